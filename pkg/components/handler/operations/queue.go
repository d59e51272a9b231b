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

package operations

import (
	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
)

type ccQueue struct {
	handler *ccjh.Handler
}

// NewCCQueue runs operations on a cc job handler.
func NewCCQueue(handler *ccjh.Handler) Queue {
	return &ccQueue{handler: handler}
}

func (q *ccQueue) Enqueue(job Job) error {
	return q.handler.Add(job)
}
