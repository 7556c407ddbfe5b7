package portaudio

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const scopeName = "github.com/tinvok/voxchat/core/audio/portaudio"

var logger = otelslog.NewLogger(scopeName)
