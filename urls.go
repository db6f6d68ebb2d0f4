// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"fmt"
	"regexp"
	"strconv"
)

// URLRef is one parsed message URL: the entity identifier and the message ID
// within it.
type URLRef struct {
	Entity    string
	MessageID int64
}

var (
	publicMessageURL  = regexp.MustCompile(`^((?:https?://)?t\.me/\w+)/(\d+)$`)
	privateMessageURL = regexp.MustCompile(`^(?:https?://)?t\.me/c/(\d+)/(\d+)$`)
)

// ParseURL parses "t.me/<name>/<id>" and "t.me/c/<chat id>/<id>" style
// message URLs. For private chat URLs the entity is the numeric chat ID in
// string form.
func ParseURL(s string) (URLRef, error) {
	for _, pat := range []*regexp.Regexp{publicMessageURL, privateMessageURL} {
		if m := pat.FindStringSubmatch(s); m != nil {
			msgID, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				return URLRef{}, fmt.Errorf("%w: %q", ErrInvalidURL, s)
			}
			return URLRef{Entity: m[1], MessageID: msgID}, nil
		}
	}
	return URLRef{}, fmt.Errorf("%w: %q", ErrInvalidURL, s)
}
