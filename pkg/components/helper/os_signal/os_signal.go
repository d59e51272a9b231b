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

package os_signal

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
)

// Wait blocks until one of the signals is received or ctx is done.
func Wait(ctx context.Context, logger *slog.Logger, signals ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)
	select {
	case sig := <-ch:
		logger.Warn("caught os signal", slog_attr.SignalKey, sig.String())
	case <-ctx.Done():
	}
}
