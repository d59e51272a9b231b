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
	"fmt"

	models_error "github.com/qavs/qavs-mod-manager/pkg/models/error"
	models_wizard "github.com/qavs/qavs-mod-manager/pkg/models/wizard"
)

const (
	msgStillInstalled  = "the app is still installed, uninstall it to continue"
	msgNotInstalled    = "the app is not installed"
	msgRestoreFailed   = "restoring app data failed"
	msgNoFolderAccess  = "no access to the app data folder"
	msgInstallNotFound = "the apk was installed but the app can not be found"
)

// Predicates are the device and backup facts queried right before a transition.
type Predicates struct {
	IsInstalled     bool
	HasAccess       bool
	HasFolderAccess bool
	ContainsApk     bool
	ContainsAppData bool
	IsPatchedApk    bool
	UninstallStatus int
	// Err holds the failure of the side effect performed by the action.
	Err error
}

type Result struct {
	Step    models_wizard.Step
	Message string
	IsError bool
}

var popups = map[models_wizard.Action]models_wizard.Step{
	models_wizard.ActionDownloadLogin: models_wizard.StepDownloadCredentials,
	models_wizard.ActionTokenLogin:    models_wizard.StepTokenPassword,
	models_wizard.ActionLogin:         models_wizard.StepLogin,
	models_wizard.ActionRestart:       models_wizard.StepRestart,
	models_wizard.ActionShowUpdate:    models_wizard.StepUpdateAvailable,
}

// StartStep returns the first step of a restore.
func StartStep(restoreAppDataOnly bool, p Predicates) models_wizard.Step {
	if restoreAppDataOnly || !p.ContainsApk {
		return models_wizard.StepNoAccess
	}
	return models_wizard.StepConfirmUninstall
}

// Transition computes the step following an action. It has no side effects, p must hold the facts
// required by the action at the given step.
func Transition(step models_wizard.Step, action models_wizard.Action, p Predicates) (Result, error) {
	if _, ok := models_wizard.ActionMap[action]; !ok {
		return Result{}, models_error.NewInvalidInputError(fmt.Errorf("unknown action '%s'", action))
	}
	if action == models_wizard.ActionAbort {
		return Result{Step: models_wizard.StepIdle}, nil
	}
	switch step {
	case models_wizard.StepIdle:
		if s, ok := popups[action]; ok {
			return Result{Step: s}, nil
		}
		if action == models_wizard.ActionCheckFolderAccess {
			if p.HasFolderAccess {
				return Result{Step: models_wizard.StepIdle}, nil
			}
			return Result{Step: models_wizard.StepNoFolderAccess, Message: msgNoFolderAccess}, nil
		}
	case models_wizard.StepConfirmUninstall:
		switch action {
		case models_wizard.ActionUninstall:
			if p.Err != nil {
				return stay(step, p.Err.Error()), nil
			}
			if p.UninstallStatus == models_wizard.UninstallStatusRemoved {
				return Result{Step: models_wizard.StepInstallApk}, nil
			}
			return Result{Step: models_wizard.StepUninstallPending}, nil
		case models_wizard.ActionConfirmUninstalled:
			return confirmUninstalled(step, p), nil
		}
	case models_wizard.StepUninstallPending:
		if action == models_wizard.ActionConfirmUninstalled {
			return confirmUninstalled(step, p), nil
		}
	case models_wizard.StepInstallApk:
		switch action {
		case models_wizard.ActionInstallApk:
			if p.Err != nil {
				return stay(step, p.Err.Error()), nil
			}
			if !p.IsInstalled {
				return stay(step, msgInstallNotFound), nil
			}
			if !p.HasAccess {
				return Result{Step: models_wizard.StepNoAccess}, nil
			}
			return Result{Step: accessGranted(p)}, nil
		case models_wizard.ActionSkip:
			return skip(p), nil
		}
	case models_wizard.StepNoAccess:
		if action == models_wizard.ActionGrantAccess {
			if !p.IsInstalled {
				return Result{Step: models_wizard.StepInstallApk, Message: msgNotInstalled}, nil
			}
			if p.Err != nil {
				return stay(step, p.Err.Error()), nil
			}
			return Result{Step: accessGranted(p)}, nil
		}
	case models_wizard.StepRestoreData:
		switch action {
		case models_wizard.ActionRestoreData:
			if !p.IsInstalled {
				return Result{Step: models_wizard.StepInstallApk, Message: msgNotInstalled}, nil
			}
			if p.Err != nil {
				return stay(step, p.Err.Error()), nil
			}
			return Result{Step: models_wizard.StepRestoreData}, nil
		case models_wizard.ActionSkip:
			return skip(p), nil
		}
	case models_wizard.StepAlreadyPatched, models_wizard.StepNoAppData, models_wizard.StepFinished:
		if action == models_wizard.ActionFinish {
			if p.Err != nil {
				return stay(step, p.Err.Error()), nil
			}
			return Result{Step: models_wizard.StepIdle}, nil
		}
	}
	return Result{}, models_error.NewPreconditionError(fmt.Errorf("action '%s' not possible at step '%s'", action, step))
}

// RestoreFinished computes the step following a finished restore data operation.
func RestoreFinished(failed bool, errText string) Result {
	if failed {
		if errText == "" {
			errText = msgRestoreFailed
		}
		return stay(models_wizard.StepRestoreData, errText)
	}
	return Result{Step: models_wizard.StepFinished}
}

func accessGranted(p Predicates) models_wizard.Step {
	switch {
	case p.IsPatchedApk:
		return models_wizard.StepAlreadyPatched
	case p.ContainsAppData:
		return models_wizard.StepRestoreData
	default:
		return models_wizard.StepNoAppData
	}
}

func confirmUninstalled(step models_wizard.Step, p Predicates) Result {
	if p.IsInstalled {
		return stay(step, msgStillInstalled)
	}
	return Result{Step: models_wizard.StepInstallApk}
}

func skip(p Predicates) Result {
	if p.IsInstalled {
		return Result{Step: models_wizard.StepFinished}
	}
	return Result{Step: models_wizard.StepInstallApk, Message: msgNotInstalled}
}

func stay(step models_wizard.Step, msg string) Result {
	return Result{Step: step, Message: msg, IsError: true}
}
