package log

import (
	"io"
	"testing"
)

func BenchmarkLoggerInfo(b *testing.B) {
	logger := New(Config{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      NewOutput(io.Discard),
		AddSource:   false,
		ServiceName: "benchmark",
	})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			"phase", 3,
			"revision", 1,
			"stale", true,
		)
	}
}

// BenchmarkLoggerDebugDisabled verifies that filtered levels stay cheap.
func BenchmarkLoggerDebugDisabled(b *testing.B) {
	logger := New(Config{
		Level:       LevelInfo, // Debug disabled
		Format:      FormatJSON,
		Output:      NewOutput(io.Discard),
		AddSource:   false,
		ServiceName: "benchmark",
	})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		logger.Debug("benchmark debug message",
			"phase", 3,
			"revision", 1,
		)
	}
}

func BenchmarkLoggerFormatText(b *testing.B) {
	logger := New(Config{
		Level:       LevelInfo,
		Format:      FormatText,
		Output:      NewOutput(io.Discard),
		AddSource:   false,
		ServiceName: "benchmark",
	})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			"phase", 3,
			"revision", 1,
		)
	}
}

func BenchmarkLoggerParallel(b *testing.B) {
	logger := New(Config{
		Level:       LevelInfo,
		Format:      FormatJSON,
		Output:      NewOutput(io.Discard),
		AddSource:   false,
		ServiceName: "benchmark",
	})

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			logger.Info("parallel benchmark message",
				"phase", 3,
				"revision", 1,
			)
		}
	})
}
