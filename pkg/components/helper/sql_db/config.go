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

package sql_db

type Config struct {
	MaxOpenConns    int   `json:"max_open_conns" env_var:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int   `json:"max_idle_conns" env_var:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime int64 `json:"conn_max_lifetime" env_var:"DATABASE_CONN_MAX_LIFETIME"`
}
