// Copyright 2026 The Derp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package derp

import "fmt"

// GrammarError reports a grammar-construction error (§7, kind 1):
// assigning a non-parser value, double-assigning a rule, reading a
// frozen grammar for an unknown rule, or freezing while a Rec is
// undefined. These are programming errors, raised eagerly at
// grammar-build time, before any input touches the engine.
type GrammarError struct {
	Rule   string
	Reason string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("derp: grammar rule %q: %s", e.Rule, e.Reason)
}
