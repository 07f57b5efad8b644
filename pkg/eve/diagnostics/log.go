package diagnostics

import (
	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/pkg/eve/match"
)

// LogSink writes events to a logrus logger. Wire lines are logged at the
// trace level, so they are only visible with --trace.
type LogSink struct {
	Logger *logrus.Logger // the standard logger if nil
}

func (sink LogSink) Trace(event match.Event) {
	logger := sink.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	entry := logger.WithFields(logrus.Fields{
		"match":  event.Match,
		"player": event.Player,
	})

	switch event.Tag {
	case match.TagSent:
		entry.Tracef("<< %s", event.Line)
	case match.TagReceived:
		entry.Tracef(">> %s", event.Line)
	case match.TagIllegal:
		if event.Line != "" {
			entry = entry.WithField("line", event.Line)
		}
		entry.Warnf("illegal: %s", event.Detail)
	case match.TagTimeout:
		entry.Warnf("timeout: %s", event.Detail)
	case match.TagCrash:
		entry.Errorf("crash: %s", event.Detail)
	default:
		entry.Debugf("%s: %s %s", event.Tag, event.Line, event.Detail)
	}
}
