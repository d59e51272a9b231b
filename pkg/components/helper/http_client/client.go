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

package http_client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

type Config struct {
	Timeout      int64  `json:"timeout" env_var:"HTTP_CLIENT_TIMEOUT"`
	RetryMax     int    `json:"retry_max" env_var:"HTTP_CLIENT_RETRY_MAX"`
	RetryWaitMin int64  `json:"retry_wait_min" env_var:"HTTP_CLIENT_RETRY_WAIT_MIN"`
	RetryWaitMax int64  `json:"retry_wait_max" env_var:"HTTP_CLIENT_RETRY_WAIT_MAX"`
	UserAgent    string `json:"user_agent" env_var:"HTTP_CLIENT_USER_AGENT"`
}

// New returns a resty client using the transport of a retrying client. Timeout is not applied to
// the client itself since downloads may run far longer, use request contexts instead.
func New(config Config) *resty.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = time.Duration(config.RetryWaitMin)
	retryClient.RetryWaitMax = time.Duration(config.RetryWaitMax)
	retryClient.Logger = nil
	client := resty.New().
		SetTransport(retryClient.HTTPClient.Transport).
		SetRetryCount(config.RetryMax).
		SetRetryWaitTime(time.Duration(config.RetryWaitMin)).
		SetRetryMaxWaitTime(time.Duration(config.RetryWaitMax))
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	return client
}

// NewWithTimeout returns a client as New does, with a per request timeout for small api calls.
func NewWithTimeout(config Config) *resty.Client {
	return New(config).SetTimeout(time.Duration(config.Timeout))
}
