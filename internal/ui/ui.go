/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop drill editor. The Fyne implementation is built
// with -tags fyne and cgo; other builds get a stub Run.
package ui

import (
	"errors"

	"drilldesigner/internal/config"
	"drilldesigner/internal/designer"
)

// Options configures Run.
type Options struct {
	Designer *designer.Designer
	Config   config.AppConfig
	// WatchPath, when set, is watched for external edits and the store is
	// reloaded when it changes.
	WatchPath string
}

// ErrNotBuilt is returned by Run in binaries built without the desktop editor.
var ErrNotBuilt = errors.New("ui: desktop editor not built into this binary")
