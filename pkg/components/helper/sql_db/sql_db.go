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

import (
	"database/sql"
	"os"
	"path"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// NewSQLiteDatabase opens the database file, creating its directory if needed.
func NewSQLiteDatabase(filePath string, config Config) (*sql.DB, error) {
	if filePath != ":memory:" {
		if err := os.MkdirAll(path.Dir(filePath), 0775); err != nil {
			return nil, err
		}
	}
	sqlDB, err := sql.Open(driverName, filePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime))
	return sqlDB, nil
}
