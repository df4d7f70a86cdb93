// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chat

import "strings"

// Personality framing applied to every reply, including refusals. Applied
// BEFORE output sanitization so the frame itself is scanned for PII too.
const (
	personalityPrefix = "😊 "
	personalitySuffix = "\n\nSe precisar de mais detalhes, é só me chamar!"
)

// ApplyPersonality wraps the agent answer in the assistant's fixed frame.
func ApplyPersonality(text string) string {
	return personalityPrefix + strings.TrimSpace(text) + personalitySuffix
}
