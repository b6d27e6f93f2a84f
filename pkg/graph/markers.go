// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package graph

// SourceTypeSource and SourceTypeDependency are the two reserved
// SourceTypeMarker symbol strings. The builtins graph interns them first, in
// this order, so they land on symbol handles 1 and 2 of every per-project
// graph: stable across runs, and cheap to test for with handle equality
// rather than string comparison.
const (
	SourceTypeSource     = "konveyor.io/source_type=source"
	SourceTypeDependency = "konveyor.io/source_type=dependency"
)

// BuiltinsFilePath names the synthetic file the builtins graph's two marker
// nodes are attached to.
const BuiltinsFilePath = "<builtins>"
