package core

import (
	"os"

	"github.com/josephlewis42/jsh/core/syntax"
	"github.com/josephlewis42/jsh/core/vos"
	"github.com/spf13/afero"
)

// stdio holds standard input, output and error of a unit.
type stdio [3]afero.File

func (s *Shell) baseStdio() stdio {
	return stdio{s.Stdin, s.Stdout, s.Stderr}
}

func (f stdio) vio() vos.VIO {
	return vos.NewVIOAdapter(f[0], f[1], f[2])
}

// redirect applies redirections on top of files in order, so a later
// redirection of a stream wins. The returned func closes the opened files.
// On error nothing stays open.
func (s *Shell) redirect(files stdio, redirects []syntax.Redirect) (stdio, func(), error) {
	var opened []afero.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
		opened = nil
	}

	for _, r := range redirects {
		target := r.Target.Expand(s.lookup)

		var (
			f   afero.File
			err error
		)
		switch r.Kind {
		case syntax.RedirIn:
			f, err = s.Fs.Open(target)
		case syntax.RedirOut, syntax.RedirErrOut:
			f, err = s.Fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		case syntax.RedirAppend, syntax.RedirErrAppend:
			f, err = s.Fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		}
		if err != nil {
			closeAll()
			return files, func() {}, err
		}
		opened = append(opened, f)

		switch r.Kind {
		case syntax.RedirIn:
			files[0] = f
		case syntax.RedirOut, syntax.RedirAppend:
			files[1] = f
		default:
			files[1], files[2] = f, f
		}
	}

	return files, closeAll, nil
}
