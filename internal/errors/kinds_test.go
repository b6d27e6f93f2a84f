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

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindExitCode(t *testing.T) {
	assert.Equal(t, ExitInput, KindExitCode(ErrBadPattern))
	assert.Equal(t, ExitDatabase, KindExitCode(ErrStoreIo))
	assert.Equal(t, ExitNetwork, KindExitCode(ErrDecompile))
	assert.Equal(t, ExitInternal, KindExitCode(ErrGraphInconsistent))
	assert.Equal(t, ExitInternal, KindExitCode(fmt.Errorf("unknown")))
}

func TestKindSentinelsDetectableThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("decompile dll: %w", ErrDecompile)
	assert.ErrorIs(t, wrapped, ErrDecompile)
}
