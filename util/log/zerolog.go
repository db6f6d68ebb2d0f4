// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mrcLog

import (
	"fmt"

	"github.com/rs/zerolog"
)

type zeroLogger struct {
	mod string
	zerolog.Logger
}

// Zerolog wraps a [zerolog.Logger] in the [Logger] interface. Subloggers are
// created with a slash-separated "module" field.
func Zerolog(log zerolog.Logger) Logger {
	return &zeroLogger{Logger: log}
}

func (z *zeroLogger) Warnf(msg string, args ...any) {
	z.Warn().Msg(fmt.Sprintf(msg, args...))
}

func (z *zeroLogger) Errorf(msg string, args ...any) {
	z.Error().Msg(fmt.Sprintf(msg, args...))
}

func (z *zeroLogger) Infof(msg string, args ...any) {
	z.Info().Msg(fmt.Sprintf(msg, args...))
}

func (z *zeroLogger) Debugf(msg string, args ...any) {
	z.Debug().Msg(fmt.Sprintf(msg, args...))
}

func (z *zeroLogger) Sub(module string) Logger {
	mod := sub(z.mod, module)
	return &zeroLogger{
		mod:    mod,
		Logger: z.Logger.With().Str("module", mod).Logger(),
	}
}

var _ Logger = (*zeroLogger)(nil)
