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

// SyntaxKind is a closed, interned-as-a-string tag describing what a node
// represents syntactically. Only these eight values are produced by the
// builder.
type SyntaxKind string

const (
	KindCompUnit           SyntaxKind = "comp_unit"
	KindNamespaceDeclaration SyntaxKind = "namespace_declaration"
	KindClassDef           SyntaxKind = "class_def"
	KindMethodName         SyntaxKind = "method_name"
	KindImport             SyntaxKind = "import"
	KindLocalVar           SyntaxKind = "local_var"
	KindArgument           SyntaxKind = "argument"
	KindName               SyntaxKind = "name"
)

// Position is a 1-based line and a zero-based UTF-8 byte-offset column, per
// the builder's convention of reporting lines the way an editor would while
// keeping columns tree-sitter-native.
type Position struct {
	Line      int
	Character int
}

// Span is a half-open [Start, End) range within one file.
type Span struct {
	Start Position
	End   Position
}

// SourceInfo is the optional per-node location and classification record.
type SourceInfo struct {
	Span Span
	Kind SyntaxKind
}
