// Package logger records shell events (command lines, syntax errors, unknown
// commands, job transitions and exit statuses) as newline delimited JSON so a
// session can be summarised later.
package logger
