package vos

import (
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestLookPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/usr/bin/tool", []byte("#!/bin/sh"), 0755)
	afero.WriteFile(fsys, "/bin/tool", []byte("#!/bin/sh"), 0755)
	afero.WriteFile(fsys, "/bin/data", []byte("not executable"), 0644)
	fsys.MkdirAll("/bin/dir", 0755)

	env := NewMapEnvFromEnvList([]string{"PATH=/nope:/usr/bin:/bin"})

	cases := map[string]struct {
		file    string
		want    string
		wantErr error
	}{
		"first-match-wins": {file: "tool", want: "/usr/bin/tool"},
		"missing":          {file: "missing", wantErr: ErrNotFound},
		"not-executable":   {file: "data", wantErr: ErrNotFound},
		"directory":        {file: "dir", wantErr: ErrNotFound},
		"empty":            {file: "", wantErr: ErrNotFound},
		"absolute":         {file: "/bin/tool", want: "/bin/tool"},
		"absolute-missing": {file: "/bin/missing", wantErr: ErrNotFound},
		"absolute-no-exec": {file: "/bin/data", wantErr: fs.ErrPermission},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := LookPath(fsys, env, tc.file)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookPathEmptyElementIsCwd(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "tool", []byte("#!/bin/sh"), 0755)

	got, err := LookPath(fsys, NewMapEnvFromEnvList([]string{"PATH=:/bin"}), "tool")
	assert.NoError(t, err)
	assert.Equal(t, "tool", got)
}
