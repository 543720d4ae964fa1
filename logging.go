package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/fields"
)

const (
	defaultLogSamplingTick  = 1 * time.Second
	defaultLogSamplingAfter = 2 * time.Second
)

func configureLogger(cfg fields.SanctraConfig) {
	logrusLogger.Out = os.Stderr
	if cfg.IsDebug {
		logrusLogger.SetLevel(logrus.DebugLevel)
		logrusLogger.SetReportCaller(true)
	} else {
		logrusLogger.SetLevel(logrus.InfoLevel)
		logrusLogger.SetReportCaller(false)
	}
	logrusLogger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	})

	logSampling = gateway.LogSamplingConfig{
		Tick:  durationFromMS(cfg.LogSamplingTickMS, defaultLogSamplingTick),
		After: durationFromMS(cfg.LogSamplingAfterMS, defaultLogSamplingAfter),
	}
}

func durationFromMS(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
