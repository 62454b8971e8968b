// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodetree

import "sync"

// config is the process-wide keyed configuration map (§5). It holds
// serialization defaults and the XML-attribute-error policy, available
// through GetConfigValue. The serializers do not read it: SerializeXML,
// SerializeSexpr and the others take their settings only from their
// options arguments. Callers needing per-thread isolation
// should run each thread's factory singletons against their own process,
// per §5's replicate-don't-share rule.
var config = struct {
	mu   sync.RWMutex
	vals map[string]interface{}
}{vals: map[string]interface{}{
	"xml_attribute_error_policy": AttrFix,
	"sexpr_flavor":               FlavorDHParser,
	"flatten_threshold":          0,
}}

// GetConfigValue returns the value stored under key, or def if unset.
func GetConfigValue(key string, def interface{}) interface{} {
	config.mu.RLock()
	defer config.mu.RUnlock()
	if v, ok := config.vals[key]; ok {
		return v
	}
	return def
}

// SetConfigValue stores value under key, visible to every subsequent
// GetConfigValue call in the process.
func SetConfigValue(key string, value interface{}) {
	config.mu.Lock()
	defer config.mu.Unlock()
	config.vals[key] = value
}
