// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"strings"

	"github.com/trevordcampbell/gozpl"
)

// preflight runs whole-label aggregate checks after every node of the
// label has been processed.
func (r *runner) preflight(plan labelPlan, ls *labelState, labelSpan gozpl.Span) {
	// Graphic memory estimation against profile RAM.
	if plan.runPreflightGFMemory && ls.gfTotalBytes > 0 && r.profile != nil {
		if ramKB, ok := r.profile.ResolveField("memory.ram_kb"); ok {
			ramBytes := uint64(ramKB) * 1024
			if ls.gfTotalBytes > ramBytes {
				r.report(gozpl.GFMemoryExceeded,
					fmt.Sprintf("total graphic data (%d bytes) exceeds available RAM (%d bytes / %d KB)",
						ls.gfTotalBytes, ramBytes, uint64(ramKB)),
					labelSpan, map[string]string{
						"command":     "^GF",
						"total_bytes": fmt.Sprintf("%d", ls.gfTotalBytes),
						"ram_bytes":   fmt.Sprintf("%d", ramBytes),
					})
			}
		}
	}

	// Labels that rely on profile dimensions print differently across
	// printers; flag the missing explicit commands.
	if plan.runPreflightMissingDimensions && r.profile != nil {
		_, hasW := r.profile.ResolveField("page.width_dots")
		_, hasH := r.profile.ResolveField("page.height_dots")
		var missing []string
		if hasW && !ls.hasExplicitPW {
			missing = append(missing, "^PW")
		}
		if hasH && !ls.hasExplicitLL {
			missing = append(missing, "^LL")
		}
		if len(missing) > 0 {
			list := strings.Join(missing, ", ")
			r.report(gozpl.MissingExplicitDimension,
				fmt.Sprintf("label relies on the profile for dimensions but sets no explicit %s", list),
				labelSpan, map[string]string{"missing_commands": list})
		}
	}
}
