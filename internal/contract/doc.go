// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract validates the request shapes an Evaluate-style RPC
// transport would carry, ahead of the transport itself (out of scope here).
//
// # condition_info
//
// Evaluate's request carries a condition_info YAML document, parsed and
// validated by ParseConditionInfo:
//
//	info, err := contract.ParseConditionInfo(rawYAML)
//	if err != nil {
//	    log.Printf("bad condition_info: %v", err)
//	}
//	fmt.Println(info.Referenced.Pattern)
//
// # Configuration via Environment
//
// The file_paths soft limit can be adjusted via the
// CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT environment variable:
//
//	export CSHARP_ANALYZER_FILE_PATHS_SOFT_LIMIT=8192
//
// If the environment variable is not set or invalid, the default limit
// of 4096 (DefaultFilePathsSoftLimit) is used.
//
// # Constants
//
// The package exports these constants:
//
//   - DefaultFilePathsSoftLimit: Baseline file_paths soft limit (4096)
//   - RequestIDMaxBytes: Maximum length for request identifiers (128 bytes)
package contract
