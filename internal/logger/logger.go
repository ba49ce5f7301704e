package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Stash reads plugin logs from stderr and decodes the level from a
// \x01<char>\x02 prefix on each line.
// https://docs.stashapp.cc/in-app-manual/plugins/externalplugins
const (
	startByte = '\x01'
	endByte   = '\x02'
)

var levelChars = map[logrus.Level]byte{
	logrus.TraceLevel: 't',
	logrus.DebugLevel: 'd',
	logrus.InfoLevel:  'i',
	logrus.WarnLevel:  'w',
	logrus.ErrorLevel: 'e',
	logrus.FatalLevel: 'e',
	logrus.PanicLevel: 'e',
}

// PluginFormatter renders logrus entries in the Stash plugin log protocol.
type PluginFormatter struct{}

func (f *PluginFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte(startByte)
	b.WriteByte(levelChars[entry.Level])
	b.WriteByte(endByte)
	b.WriteString(entry.Message)
	for k, v := range entry.Data {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		switch val := v.(type) {
		case string:
			b.WriteString(val)
		case error:
			b.WriteString(val.Error())
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New builds the tool logger. In plugin mode logs go to stderr in the Stash
// protocol; otherwise a plain text formatter is used.
func New(level string, plugin bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if plugin {
		log.SetFormatter(&PluginFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
