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

package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
	"github.com/qavs/qavs-mod-manager/pkg/models/slog_attr"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

// Controller drives the restore flow of the selected backup. Every transition queries the device
// first and then applies Transition.
type Controller struct {
	device     Device
	backups    Backups
	operations Operations
	restorer   DataRestorer
	state      models_wizard.State
	mu         sync.Mutex
}

func New(device Device, backups Backups, operations Operations, restorer DataRestorer) *Controller {
	return &Controller{
		device:     device,
		backups:    backups,
		operations: operations,
		restorer:   restorer,
	}
}

// Select sets the backup restored by the next flow.
func (c *Controller) Select(app, backup string) error {
	if _, err := c.backups.Info(app, backup); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != models_wizard.StepIdle {
		return models_error.NewPreconditionError(errors.New("restore in progress"))
	}
	c.state.App = app
	c.state.SelectedBackup = backup
	return nil
}

func (c *Controller) Start(ctx context.Context, app string, req models_wizard.StartRequest) (models_wizard.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step != models_wizard.StepIdle {
		return c.state, models_error.NewPreconditionError(errors.New("restore in progress"))
	}
	if app == "" {
		return c.state, models_error.NewPreconditionError(errors.New("no app selected"))
	}
	if c.operations.IsActive(models_operation.KindBackupCreate) {
		return c.state, models_error.NewPreconditionError(errors.New("a backup is being created, wait for it to finish"))
	}
	if c.state.SelectedBackup == "" || c.state.App != app {
		return c.state, models_error.NewPreconditionError(errors.New("no backup selected"))
	}
	info, err := c.backups.Info(app, c.state.SelectedBackup)
	if err != nil {
		return c.state, err
	}
	c.apply(Result{Step: StartStep(req.RestoreAppDataOnly, Predicates{ContainsApk: info.ContainsApk})})
	logger.Info("restore started", slog_attr.AppKey, app, slog_attr.BackupKey, c.state.SelectedBackup, slog_attr.StepKey, c.state.Step)
	return c.state, nil
}

// Do performs an action at the current step.
func (c *Controller) Do(ctx context.Context, action models_wizard.Action) (models_wizard.State, error) {
	if _, ok := models_wizard.ActionMap[action]; !ok {
		return c.State(), models_error.NewInvalidInputError(fmt.Errorf("unknown action '%s'", action))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if action == models_wizard.ActionAbort {
		c.abort()
		return c.state, nil
	}
	if c.state.Step == models_wizard.StepRestoreData && c.state.OperationID != "" {
		return c.state, models_error.NewPreconditionError(errors.New("app data is being restored"))
	}
	if _, err := Transition(c.state.Step, action, Predicates{}); err != nil {
		return c.state, err
	}
	p, opID, err := c.perform(ctx, c.state.Step, action)
	if err != nil {
		return c.state, err
	}
	res, err := Transition(c.state.Step, action, p)
	if err != nil {
		return c.state, err
	}
	prev := c.state.Step
	c.apply(res)
	if res.Step == models_wizard.StepRestoreData && p.Err == nil && opID != "" {
		c.state.OperationID = opID
	}
	logger.Debug("wizard transition", slog_attr.ActionKey, action, "from", prev, slog_attr.StepKey, res.Step)
	return c.state, nil
}

// State returns the current state, a pending restore operation is polled and advances the flow once finished.
func (c *Controller) State() models_wizard.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Step == models_wizard.StepRestoreData && c.state.OperationID != "" {
		op, err := c.operations.Get(c.state.OperationID)
		if err != nil {
			c.apply(RestoreFinished(true, err.Error()))
		} else if op.IsTerminal() {
			c.apply(RestoreFinished(op.IsError || op.IsCanceled, op.ErrorText))
		}
	}
	return c.state
}

// PatchFinished opens the flow at the first step to restore the backup produced by patching.
func (c *Controller) PatchFinished(app, backup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = models_wizard.State{
		Step:           models_wizard.StepConfirmUninstall,
		App:            app,
		SelectedBackup: backup,
	}
	logger.Info("restore of patched backup started", slog_attr.AppKey, app, slog_attr.BackupKey, backup)
}

// perform runs the side effect of an action and collects the predicates for its transition.
// Query failures are returned, failures of the side effect are carried in Predicates.Err.
func (c *Controller) perform(ctx context.Context, step models_wizard.Step, action models_wizard.Action) (Predicates, string, error) {
	var p Predicates
	var err error
	app := c.state.App
	switch {
	case step == models_wizard.StepIdle && action == models_wizard.ActionCheckFolderAccess:
		p.HasFolderAccess = c.device.HasFolderAccess(app)
	case action == models_wizard.ActionUninstall:
		p.UninstallStatus, p.Err = c.device.UninstallPackage(ctx, app)
	case action == models_wizard.ActionConfirmUninstalled || action == models_wizard.ActionSkip:
		p.IsInstalled, err = c.device.IsPackageInstalled(ctx, app)
	case action == models_wizard.ActionInstallApk && step == models_wizard.StepInstallApk:
		if p.Err = c.backups.RestoreApk(ctx, app, c.state.SelectedBackup); p.Err != nil {
			return p, "", nil
		}
		if p.IsInstalled, err = c.device.IsPackageInstalled(ctx, app); err != nil || !p.IsInstalled {
			return p, "", err
		}
		if p.HasAccess, err = c.device.HasStorageAccess(ctx, app); err != nil {
			return p, "", err
		}
		err = c.backupPredicates(&p)
	case action == models_wizard.ActionGrantAccess && step == models_wizard.StepNoAccess:
		if p.IsInstalled, err = c.device.IsPackageInstalled(ctx, app); err != nil || !p.IsInstalled {
			return p, "", err
		}
		if p.Err = c.device.GrantStorageAccess(ctx, app); p.Err != nil {
			return p, "", nil
		}
		err = c.backupPredicates(&p)
	case action == models_wizard.ActionRestoreData && step == models_wizard.StepRestoreData:
		if p.IsInstalled, err = c.device.IsPackageInstalled(ctx, app); err != nil || !p.IsInstalled {
			return p, "", err
		}
		var opID string
		opID, p.Err = c.restorer.StartRestoreData(app, c.state.SelectedBackup)
		return p, opID, nil
	case action == models_wizard.ActionFinish && step == models_wizard.StepAlreadyPatched:
		p.Err = c.device.GrantStorageAccess(ctx, app)
	}
	return p, "", err
}

func (c *Controller) backupPredicates(p *Predicates) error {
	info, err := c.backups.Info(c.state.App, c.state.SelectedBackup)
	if err != nil {
		return err
	}
	p.ContainsApk = info.ContainsApk
	p.ContainsAppData = info.ContainsAppData
	p.IsPatchedApk = info.IsPatchedApk
	return nil
}

func (c *Controller) apply(res Result) {
	c.state.Step = res.Step
	c.state.Message = res.Message
	c.state.IsError = res.IsError
	c.state.OperationID = ""
}

func (c *Controller) abort() {
	c.state = models_wizard.State{App: c.state.App}
}
