// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mrcLog_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mrcLog "go.mau.fi/mediarc/util/log"
)

func TestZerolog_SubModules(t *testing.T) {
	var buf bytes.Buffer
	log := mrcLog.Zerolog(zerolog.New(&buf))

	log.Sub("Archive").Sub("Query").Infof("prepared %d statements", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Archive/Query", line["module"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "prepared 7 statements", line["message"])
}

func TestZerolog_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := mrcLog.Zerolog(zerolog.New(&buf).Level(zerolog.WarnLevel))

	log.Debugf("dropped")
	log.Infof("dropped")
	log.Warnf("kept")
	log.Errorf("kept too")

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.NotContains(t, buf.String(), "dropped")
}
