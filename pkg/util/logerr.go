package util

import (
	log "github.com/sirupsen/logrus"
)

// LogErr logs err with an optional format message and reports whether err was non-nil.
//
//	util.LogErr(environ.Close(ctx), "environment close error")
func LogErr(err error, msgAndArgs ...interface{}) bool {
	if err == nil {
		return false
	}

	entry := log.WithError(err)
	switch len(msgAndArgs) {
	case 0:
		entry.Error(err.Error())
	case 1:
		entry.Error(msgAndArgs[0])
	default:
		if format, ok := msgAndArgs[0].(string); ok {
			entry.Errorf(format, msgAndArgs[1:]...)
		} else {
			entry.Error(msgAndArgs...)
		}
	}

	return true
}
