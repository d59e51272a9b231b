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

package api

import (
	"errors"
	"net/http"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
)

func getStatusCode(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	var nfe *models_error.NotFoundError
	if errors.As(err, &nfe) || errors.Is(err, models_error.NotFoundErr) {
		return http.StatusNotFound
	}
	var iie *models_error.InvalidInputError
	if errors.As(err, &iie) {
		return http.StatusBadRequest
	}
	var pae *models_error.ParseError
	if errors.As(err, &pae) {
		return http.StatusBadRequest
	}
	var se *models_error.SchemaError
	if errors.As(err, &se) {
		return http.StatusBadRequest
	}
	var ce *models_error.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict
	}
	var pe *models_error.PreconditionError
	if errors.As(err, &pe) {
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}
