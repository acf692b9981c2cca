//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"drilldesigner/internal/catalog"
	"drilldesigner/internal/designer"
	"drilldesigner/internal/domain"
	"drilldesigner/internal/drillpack"
	"drilldesigner/internal/editor"
	"drilldesigner/internal/export"
	applog "drilldesigner/internal/log"
	"drilldesigner/internal/storage"
	"drilldesigner/internal/store"
	"drilldesigner/internal/vector"
	"drilldesigner/internal/version"
)

// Run starts the Fyne desktop editor and blocks until the window closes.
func Run(opts Options) error {
	if opts.Designer == nil {
		return errors.New("ui: no designer")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	d := opts.Designer
	s := d.Store()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("drilldesigner")
	w := fyneApp.NewWindow("Drill Designer")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 860)
	if winW < 900 {
		winW = 900
	}
	if winH < 640 {
		winH = 640
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	pitch := NewPitchCanvas()
	pitch.OnError = func(err error) {
		l.Warn("gesture rejected", slog.Any("err", err))
	}

	var (
		ed      *editor.Editor
		stepID  string
		steps   []domain.DrillStep
		palette = catalog.Palette()
		current = catalog.DefaultColor()
	)
	if c, ok := catalog.ResolveColor(opts.Config.General.DefaultColor); ok {
		current = c
	}
	if c, ok := catalog.ResolveColor(prefs.StringWithFallback("palette.color", "")); ok {
		current = c
	}

	updateStatus := func() {
		if ed == nil {
			status.SetText("Select a step to edit its pitch")
			return
		}
		dirty := ""
		if ed.Dirty() {
			dirty = " | unsaved changes"
		}
		status.SetText(fmt.Sprintf("Players: %d | Items: %d%s", ed.PlayerCount(), ed.Len(), dirty))
	}
	pitch.OnChange = updateStatus

	// Step list (left)
	drillTitle := widget.NewLabelWithStyle("No drill", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	drillInfo := widget.NewLabel("")
	drillInfo.Wrapping = fyne.TextWrapWord
	emptyHint := widget.NewLabel(designer.EmptyStepsMessage)
	stepList := widget.NewList(
		func() int { return len(steps) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(steps) {
				o.(*widget.Label).SetText(stepLabel(int(i), steps[i]))
			}
		},
	)

	closeEditor := func() {
		ed, stepID = nil, ""
		pitch.Clear()
		updateStatus()
	}

	refreshSteps := func() {
		list, err := d.Steps()
		if errors.Is(err, store.ErrNoCurrentDrill) {
			steps = nil
			drillTitle.SetText("No drill")
			drillInfo.SetText("Create a drill or import a drill pack to start.")
			emptyHint.Hide()
			stepList.Refresh()
			closeEditor()
			return
		}
		steps = list.Steps
		drillTitle.SetText(list.Drill.Title)
		info := fmt.Sprintf("%s\n%s", list.Drill.Date, list.Drill.Objective)
		if list.Drill.Category != "" {
			info += "\n" + categoryTitle(list.Drill.Category)
		}
		drillInfo.SetText(info)
		if list.Empty() {
			emptyHint.Show()
		} else {
			emptyHint.Hide()
		}
		stepList.Refresh()
		if stepID != "" && list.Drill.StepIndex(stepID) < 0 {
			closeEditor()
		}
	}

	openStep := func(id string) {
		next, st, err := d.OpenEditor(id)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		_ = next.SetColor(current)
		ed, stepID = next, id
		pitch.Show(s.Current(), st, ed)
		l.Info("step opened", slog.String("step", id), slog.Int("elements", ed.Len()))
		updateStatus()
	}

	saveStep := func() {
		if ed == nil {
			return
		}
		if err := d.SaveEditor(ctx, ed, stepID); err != nil {
			l.Error("save step failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		updateStatus()
	}

	// confirmDiscard runs next directly, or after asking when the open step has unsaved changes.
	confirmDiscard := func(next func()) {
		if ed == nil || !ed.Dirty() {
			next()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Discard the changes to this step?", func(ok bool) {
			if ok {
				next()
			}
		}, w)
	}

	stepList.OnSelected = func(i widget.ListItemID) {
		if i < 0 || int(i) >= len(steps) {
			return
		}
		id := steps[i].ID
		if id == stepID {
			return
		}
		confirmDiscard(func() { openStep(id) })
	}

	s.Subscribe(func(*domain.Drill) { fyne.Do(refreshSteps) })

	showValidation := func(err error) {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			keys := make([]string, 0, len(verrs))
			for k := range verrs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			msgs := make([]string, 0, len(keys))
			for _, k := range keys {
				msgs = append(msgs, verrs[k])
			}
			dialog.ShowInformation("Please check the form", strings.Join(msgs, "\n"), w)
			return
		}
		dialog.ShowError(err, w)
	}

	newDrill := func() {
		form := d.NewDrillForm()
		if ft := domain.FieldType(opts.Config.General.DefaultFieldType); ft.Valid() {
			form.FieldType = ft
		}
		titleEntry := widget.NewEntry()
		dateEntry := widget.NewEntry()
		dateEntry.SetText(form.Date)
		objEntry := widget.NewMultiLineEntry()
		catSelect := widget.NewSelect(categoryOptions(), nil)
		fieldSelect := widget.NewSelect(fieldOptions(), nil)
		fieldSelect.SetSelected(string(form.FieldType))
		groundSelect := widget.NewSelect([]string{string(domain.GroundWhole), string(domain.GroundHalf)}, nil)
		groundSelect.SetSelected(string(form.GroundSize))
		dlg := dialog.NewForm("New Drill", "Create", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Title", titleEntry),
			widget.NewFormItem("Date", dateEntry),
			widget.NewFormItem("Objective", objEntry),
			widget.NewFormItem("Category", catSelect),
			widget.NewFormItem("Field", fieldSelect),
			widget.NewFormItem("Ground", groundSelect),
		}, func(ok bool) {
			if !ok {
				return
			}
			form.Title, form.Date, form.Objective = titleEntry.Text, dateEntry.Text, objEntry.Text
			form.Category = domain.Category(catSelect.Selected)
			form.FieldType = domain.FieldType(fieldSelect.Selected)
			form.GroundSize = domain.GroundSize(groundSelect.Selected)
			if _, err := d.CreateDrill(ctx, form); err != nil {
				showValidation(err)
				return
			}
			closeEditor()
			refreshSteps()
		}, w)
		dlg.Resize(fyne.NewSize(480, 420))
		dlg.Show()
	}

	addStep := func() {
		if s.Current() == nil {
			dialog.ShowInformation("Add Step", "Create a drill first.", w)
			return
		}
		titleEntry := widget.NewEntry()
		objEntry := widget.NewMultiLineEntry()
		dlg := dialog.NewForm("Add Step", "Add", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Title", titleEntry),
			widget.NewFormItem("Objective", objEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			st, err := d.CreateStep(ctx, domain.StepForm{Title: titleEntry.Text, Objective: objEntry.Text})
			if err != nil {
				showValidation(err)
				return
			}
			refreshSteps()
			confirmDiscard(func() { openStep(st.ID) })
		}, w)
		dlg.Resize(fyne.NewSize(420, 280))
		dlg.Show()
	}

	deleteStep := func() {
		if stepID == "" {
			dialog.ShowInformation("Delete Step", "Select a step first.", w)
			return
		}
		id := stepID
		dialog.ShowConfirm("Delete Step", "Delete this step and its pitch layout?", func(ok bool) {
			if !ok {
				return
			}
			if err := d.DeleteStep(ctx, id); err != nil {
				dialog.ShowError(err, w)
				return
			}
			stepList.UnselectAll()
			closeEditor()
			refreshSteps()
		}, w)
	}

	left := container.NewBorder(
		container.NewVBox(drillTitle, drillInfo, widget.NewSeparator(), widget.NewLabel("Steps"), emptyHint),
		container.NewGridWithColumns(2,
			widget.NewButton("Add Step", addStep),
			widget.NewButton("Delete Step", deleteStep),
		),
		nil, nil, stepList)

	// Catalog, palette and element actions (right)
	cat := catalog.Default()
	tabs := container.NewAppTabs()
	for _, tab := range catalog.Tabs() {
		grid := container.NewGridWithColumns(2)
		for _, tpl := range cat.Tab(tab) {
			tpl := tpl
			grid.Add(widget.NewButton(templateLabel(tpl), func() {
				if ed == nil {
					dialog.ShowInformation("Place", "Open a step first.", w)
					return
				}
				el := ed.PlaceCentered(tpl)
				l.Debug("placed from catalog", slog.String("asset", tpl.ID), slog.Int64("instance", el.InstanceID))
				pitch.Refresh()
				updateStatus()
			}))
		}
		tabs.Append(container.NewTabItem(tabTitle(tab), container.NewVScroll(grid)))
	}

	labels := make([]string, len(palette))
	for i, c := range palette {
		labels[i] = c.Label
	}
	swatch := canvas.NewRectangle(toColor(current))
	swatch.SetMinSize(fyne.NewSize(24, 24))
	colorRadio := widget.NewRadioGroup(labels, func(v string) {
		for _, c := range palette {
			if c.Label != v {
				continue
			}
			current = c.Value
			swatch.FillColor = toColor(current)
			swatch.Refresh()
			prefs.SetString("palette.color", current)
			if ed != nil {
				_ = ed.SetColor(current)
			}
		}
	})
	for _, c := range palette {
		if c.Value == current {
			colorRadio.SetSelected(c.Label)
		}
	}

	withSelection := func(fn func(id int64)) func() {
		return func() {
			if ed == nil {
				return
			}
			id, ok := ed.Selected()
			if !ok {
				status.SetText("Select an element first")
				return
			}
			fn(id)
			pitch.Refresh()
			updateStatus()
		}
	}
	resetBtn := widget.NewButton("Reset Element", withSelection(func(id int64) { ed.Reset(id) }))
	deleteBtn := widget.NewButton("Delete Element", withSelection(func(id int64) { ed.Delete(id) }))
	clearBtn := widget.NewButton("Clear Pitch", func() {
		if ed == nil || ed.Len() == 0 {
			return
		}
		dialog.ShowConfirm("Clear Pitch", "Remove every element from this step?", func(ok bool) {
			if ok {
				ed.Clear()
				pitch.Refresh()
				updateStatus()
			}
		}, w)
	})
	saveBtn := widget.NewButton("Save Step", saveStep)
	saveBtn.Importance = widget.HighImportance

	right := container.NewBorder(nil,
		container.NewVBox(
			widget.NewSeparator(),
			widget.NewLabel("Colour"),
			container.NewHBox(swatch, colorRadio),
			widget.NewSeparator(),
			resetBtn, deleteBtn, clearBtn, saveBtn,
		),
		nil, nil, tabs)

	split := container.NewHSplit(left, container.NewBorder(nil, nil, nil, right, pitch))
	split.Offset = 0.2
	w.SetContent(container.NewBorder(nil, status, nil, nil, split))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ed == nil {
			return
		}
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			withSelection(func(id int64) { ed.Delete(id) })()
		case fyne.KeyEscape:
			ed.ClearSelection()
			pitch.Refresh()
		}
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		saveStep()
	})

	// Menus
	newItem := fyne.NewMenuItem("New Drill…", func() { confirmDiscard(newDrill) })
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	addStepItem := fyne.NewMenuItem("Add Step…", addStep)
	saveItem := fyne.NewMenuItem("Save Step", saveStep)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}

	importPackItem := fyne.NewMenuItem("Import Drill Pack…", func() {
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			path := ur.URI().Path()
			_ = ur.Close()
			dr, err := drillpack.Import(path)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			confirmDiscard(func() {
				if err := s.SetCurrentDrill(ctx, dr); err != nil {
					dialog.ShowError(err, w)
					return
				}
				closeEditor()
				refreshSteps()
				dialog.ShowInformation("Import Drill Pack", fmt.Sprintf("Imported %q with %d steps", dr.Title, len(dr.Steps)), w)
			})
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		open.Show()
	})
	exportPackItem := fyne.NewMenuItem("Export Drill Pack…", func() {
		cur := s.Current()
		if cur == nil {
			dialog.ShowInformation("Export Drill Pack", "No drill open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			out := uc.URI().Path()
			_ = uc.Close()
			if err := drillpack.Export(cur, out); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export Drill Pack", "Exported to "+out, w)
		}, w)
		save.SetFileName("drill.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	})
	fileMenu := fyne.NewMenu("File", newItem, addStepItem, saveItem, fyne.NewMenuItemSeparator(), importPackItem, exportPackItem)

	exportStep := func(format string) func() {
		return func() {
			cur := s.Current()
			if cur == nil || stepID == "" {
				dialog.ShowInformation("Export", "Open a step first.", w)
				return
			}
			i := cur.StepIndex(stepID)
			st := cur.Steps[i]
			if ed != nil {
				cd := ed.Snapshot()
				st.CanvasData = &cd
			}
			save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				defer uc.Close()
				b, err := export.StepBytes(cur, st, format, export.Options{}, 2)
				if err == nil {
					_, err = uc.Write(b)
				}
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				dialog.ShowInformation("Export", "Exported to "+uc.URI().Path(), w)
			}, w)
			save.SetFileName(export.StepFileName(i, format))
			save.SetFilter(fstorage.NewExtensionFileFilter([]string{"." + format}))
			save.Show()
		}
	}
	exportPDFItem := fyne.NewMenuItem("Drill as PDF…", func() {
		cur := s.Current()
		if cur == nil {
			dialog.ShowInformation("Export PDF", "No drill open.", w)
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			defer uc.Close()
			if err := export.PDF(uc, cur, export.PDFOptions{}); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export PDF", "Exported to "+uc.URI().Path(), w)
		}, w)
		save.SetFileName("drill.pdf")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf"}))
		save.Show()
	})
	batchItem := fyne.NewMenuItem("All Steps (web preset)", func() {
		cur := s.Current()
		if cur == nil {
			dialog.ShowInformation("Export", "No drill open.", w)
			return
		}
		paths, err := export.BatchExport(cur, opts.Config.General.DataDir, export.BatchOptions{Preset: export.PresetWeb})
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		dialog.ShowInformation("Export", fmt.Sprintf("Wrote %d files under %s", len(paths),
			export.ResolveDir(opts.Config.General.DataDir, "")), w)
	})
	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("Step as PNG…", exportStep(export.FormatPNG)),
		fyne.NewMenuItem("Step as SVG…", exportStep(export.FormatSVG)),
		exportPDFItem, batchItem)

	aboutItem := fyne.NewMenuItem("About Drill Designer", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("Drill Designer\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s\nData: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe, opts.Config.General.DataDir)
		dialog.ShowInformation("About", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, exportMenu, fyne.NewMenu("About", aboutItem)))

	if opts.WatchPath != "" {
		go func() {
			err := storage.Watch(ctx, opts.WatchPath, storage.DefaultDebounce, func() {
				if err := s.Reload(ctx); err != nil {
					l.Warn("reload after external change failed", slog.Any("err", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				l.Warn("watch stopped", slog.Any("err", err))
			}
		}()
	}

	w.SetCloseIntercept(func() {
		confirmDiscard(func() {
			sz := w.Canvas().Size()
			prefs.SetInt("window.width", int(sz.Width))
			prefs.SetInt("window.height", int(sz.Height))
			w.Close()
		})
	})

	refreshSteps()
	if list, err := d.Steps(); err == nil && !list.Empty() {
		stepList.Select(0)
	} else if err != nil {
		newDrill()
	}
	updateStatus()
	w.ShowAndRun()
	return nil
}

func templateLabel(t catalog.Template) string {
	if t.Icon != "" {
		return t.Icon + " " + t.Label
	}
	return t.Label
}

func tabTitle(t catalog.Tab) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func categoryOptions() []string {
	var out []string
	for _, c := range domain.Categories() {
		out = append(out, string(c.ID))
	}
	return out
}

func categoryTitle(c domain.Category) string {
	for _, ci := range domain.Categories() {
		if ci.ID == c {
			return ci.Title
		}
	}
	return string(c)
}

func fieldOptions() []string {
	return []string{string(domain.FieldFull), string(domain.FieldHalf), string(domain.Field7v7)}
}

func toColor(hex string) color.Color {
	c, ok := vector.ParseHex(hex)
	if !ok {
		return color.White
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// PitchCanvas draws one step's pitch and routes pointer gestures to an editor.
type PitchCanvas struct {
	widget.BaseWidget

	drill *domain.Drill
	step  domain.DrillStep
	ed    *editor.Editor
	g     gestures
	pl    pitchLayout

	dragging bool

	OnChange func()
	OnError  func(error)
}

func NewPitchCanvas() *PitchCanvas {
	p := &PitchCanvas{}
	p.ExtendBaseWidget(p)
	return p
}

// Show binds the canvas to a step and the editor holding its elements.
func (p *PitchCanvas) Show(d *domain.Drill, st domain.DrillStep, ed *editor.Editor) {
	p.drill, p.step, p.ed = d, st, ed
	p.g = gestures{ed: ed}
	p.dragging = false
	p.Refresh()
}

// Clear unbinds the canvas.
func (p *PitchCanvas) Clear() {
	p.drill, p.ed = nil, nil
	p.g = gestures{}
	p.Refresh()
}

func (p *PitchCanvas) PreferredSize() fyne.Size { return fyne.NewSize(600, 800) }

func (p *PitchCanvas) relayout(size fyne.Size) {
	if p.drill == nil || p.ed == nil || size.Width <= 0 || size.Height <= 0 {
		p.pl = pitchLayout{}
		return
	}
	p.pl = layoutPitch(p.drill, p.step, p.ed.Elements(), float64(size.Width), float64(size.Height))
}

func (p *PitchCanvas) changed() {
	p.Refresh()
	if p.OnChange != nil {
		p.OnChange()
	}
}

func (p *PitchCanvas) fail(err error) {
	if err != nil && p.OnError != nil {
		p.OnError(err)
	}
}

func toPt(pos fyne.Position) vector.Pt { return vector.Pt{X: float64(pos.X), Y: float64(pos.Y)} }

// Tapped selects the element under the pointer or clears the selection.
func (p *PitchCanvas) Tapped(e *fyne.PointEvent) {
	if p.ed == nil {
		return
	}
	pt := toPt(e.Position)
	p.ed.Tap(p.pl.box, pt.X, pt.Y)
	p.changed()
}

// Dragged starts a session on the first event of a drag and feeds the rest to it.
func (p *PitchCanvas) Dragged(e *fyne.DragEvent) {
	if p.ed == nil {
		return
	}
	pt := toPt(e.Position)
	if !p.dragging {
		p.dragging = true
		start := vector.Pt{X: pt.X - float64(e.Dragged.DX), Y: pt.Y - float64(e.Dragged.DY)}
		if _, err := p.g.start(p.pl.box, start); err != nil {
			p.fail(err)
		}
	}
	if p.g.active() {
		p.fail(p.g.move(pt))
		p.changed()
	}
}

func (p *PitchCanvas) DragEnd() {
	p.dragging = false
	p.g.end()
	p.changed()
}

func (p *PitchCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &pitchRenderer{p: p}
	r.bg = canvas.NewRectangle(color.NRGBA{R: 30, G: 30, B: 34, A: 255})
	r.raster = canvas.NewRaster(r.draw)
	r.hint = canvas.NewText("Select a step to edit its pitch", color.NRGBA{R: 148, G: 163, B: 184, A: 255})
	r.hint.Alignment = fyne.TextAlignCenter

	accent := color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	r.bbox = canvas.NewRectangle(color.Transparent)
	r.bbox.StrokeColor = accent
	r.bbox.StrokeWidth = 1
	for i := range r.handles {
		r.handles[i] = canvas.NewRectangle(accent)
	}
	r.rot = canvas.NewCircle(color.NRGBA{R: 255, G: 170, B: 0, A: 255})

	r.objects = []fyne.CanvasObject{r.bg, r.raster, r.hint, r.bbox}
	for _, h := range r.handles {
		r.objects = append(r.objects, h)
	}
	r.objects = append(r.objects, r.rot)
	return r
}

type pitchRenderer struct {
	p       *PitchCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	raster  *canvas.Raster
	hint    *canvas.Text
	bbox    *canvas.Rectangle
	handles [8]*canvas.Rectangle
	rot     *canvas.Circle
}

func (r *pitchRenderer) Destroy()                     {}
func (r *pitchRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *pitchRenderer) MinSize() fyne.Size           { return fyne.NewSize(240, 320) }

func (r *pitchRenderer) Refresh() {
	r.Layout(r.p.Size())
	r.raster.Refresh()
	canvas.Refresh(r.p)
}

// draw rasterizes the scene at the raster's pixel size.
func (r *pitchRenderer) draw(w, h int) image.Image {
	size := r.p.Size()
	if r.p.drill == nil || r.p.ed == nil || size.Width <= 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	pl := layoutPitch(r.p.drill, r.p.step, r.p.ed.Elements(), float64(size.Width), float64(size.Height))
	return export.Raster(pl.scene, export.PNGOptions{Scale: float64(w) / float64(size.Width)})
}

func (r *pitchRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
	r.hint.Resize(fyne.NewSize(size.Width, 24))
	r.hint.Move(fyne.NewPos(0, size.Height/2-12))

	p := r.p
	p.relayout(size)
	bound := p.drill != nil && p.ed != nil
	r.raster.Hidden = !bound
	r.hint.Hidden = bound

	hideSelection := func() {
		r.bbox.Hide()
		for _, h := range r.handles {
			h.Hide()
		}
		r.rot.Hide()
	}
	if !bound {
		hideSelection()
		return
	}
	id, ok := p.ed.Selected()
	if !ok {
		hideSelection()
		return
	}
	el, ok := p.ed.Element(id)
	if !ok {
		hideSelection()
		return
	}
	b := editor.Frame(el, p.pl.box).Bounds()
	r.bbox.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
	r.bbox.Resize(fyne.NewSize(float32(b.W), float32(b.H)))
	r.bbox.Show()
	gs := grips(el, p.pl.box)
	for i, g := range gs {
		gr := g.rect()
		obj := fyne.CanvasObject(r.rot)
		if g.kind == gripResize && i < len(r.handles) {
			obj = r.handles[i]
		}
		obj.Move(fyne.NewPos(float32(gr.X), float32(gr.Y)))
		obj.Resize(fyne.NewSize(float32(gr.W), float32(gr.H)))
		obj.Show()
	}
}
