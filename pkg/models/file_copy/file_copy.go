/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package file_copy

type Type struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Extension      string `json:"extension" yaml:"extension"`
	Destination    string `json:"destination" yaml:"destination"`
	RequiresModded bool   `json:"requiresModded" yaml:"requiresModded"`
}

type AvailableType struct {
	Type
	Available bool `json:"available"`
	RefCount  int  `json:"refCount"`
}

// Catalog maps an app to the copy types known for it.
type Catalog map[string][]Type
