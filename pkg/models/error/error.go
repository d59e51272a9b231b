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

package error

import "errors"

var NotFoundErr = errors.New("not found")

type cError struct {
	err error
}

func (e *cError) Error() string {
	return e.err.Error()
}

func (e *cError) Unwrap() error {
	return e.err
}

// ConfigurationError signals a broken setup and aborts startup.
type ConfigurationError struct {
	cError
}

func NewConfigurationError(err error) error {
	return &ConfigurationError{cError{err: err}}
}

type ParseError struct {
	cError
}

func NewParseError(err error) error {
	return &ParseError{cError{err: err}}
}

// SchemaError is raised for a single manifest entry and never aborts a whole load.
type SchemaError struct {
	cError
}

func NewSchemaError(err error) error {
	return &SchemaError{cError{err: err}}
}

type ConflictError struct {
	cError
}

func NewConflictError(err error) error {
	return &ConflictError{cError{err: err}}
}

type PreconditionError struct {
	cError
}

func NewPreconditionError(err error) error {
	return &PreconditionError{cError{err: err}}
}

type NotFoundError struct {
	cError
}

func NewNotFoundError(err error) error {
	return &NotFoundError{cError{err: err}}
}

type InvalidInputError struct {
	cError
}

func NewInvalidInputError(err error) error {
	return &InvalidInputError{cError{err: err}}
}

type InternalError struct {
	cError
}

func NewInternalError(err error) error {
	return &InternalError{cError{err: err}}
}

type MultiError struct {
	errs []error
}

func NewMultiError(errs []error) *MultiError {
	return &MultiError{errs: errs}
}

func (e *MultiError) Error() string {
	var str string
	errsLen := len(e.errs)
	for i, err := range e.errs {
		str += err.Error()
		if i < errsLen-1 {
			str += "\n"
		}
	}
	return str
}

func (e *MultiError) Errors() []error {
	return e.errs
}

func (e *MultiError) Unwrap() []error {
	return e.errs
}
