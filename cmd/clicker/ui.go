package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/keycode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type clickerTheme struct {
	base fyne.Theme
}

func newClickerTheme() fyne.Theme {
	return &clickerTheme{base: theme.DarkTheme()}
}

func (t *clickerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0d, G: 0x10, B: 0x14, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x12, G: 0x16, B: 0x1c, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1d, G: 0x23, B: 0x2c, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x16, G: 0x1a, B: 0x20, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x13, G: 0x18, B: 0x1f, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x2b, G: 0x33, B: 0x40, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0xff, G: 0x66, B: 0x66, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0xff, G: 0x7a, B: 0x7a, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0xff, G: 0x7a, B: 0x7a, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0xff, G: 0x7a, B: 0x7a, A: 0x40}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xff, G: 0x66, B: 0x66, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf2, G: 0xf4, B: 0xf8, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xa9, G: 0xb3, B: 0xc2, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	case theme.ColorNameWarning:
		return color.NRGBA{R: 0xff, G: 0x9f, B: 0x5a, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *clickerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *clickerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *clickerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 8
	case theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

func fieldLabel(f autoclicker.Field) string {
	switch f {
	case autoclicker.FieldLeftClickCount:
		return "Left clicks"
	case autoclicker.FieldRightClickCount:
		return "Right clicks"
	case autoclicker.FieldDelayMs:
		return "Delay (ms)"
	case autoclicker.FieldActivationKey:
		return "Activate key"
	case autoclicker.FieldDeactivationKey:
		return "Deactivate key"
	case autoclicker.FieldConfigModeKey:
		return "Configure key"
	case autoclicker.FieldSaveConfigKey:
		return "Save key"
	default:
		return f.Key()
	}
}

func isKeyField(f autoclicker.Field) bool {
	return f >= autoclicker.FieldActivationKey && f <= autoclicker.FieldSaveConfigKey
}

func modeColor(mode autoclicker.Mode) color.Color {
	switch mode {
	case autoclicker.ModeActive:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	case autoclicker.ModeConfiguring:
		return color.NRGBA{R: 0xff, G: 0x9f, B: 0x5a, A: 0xff}
	default:
		return color.NRGBA{R: 0xa9, G: 0xb3, B: 0xc2, A: 0xff}
	}
}

// fyneView renders machine state into the window. Every widget update is
// marshalled onto the UI goroutine with fyne.Do; it never waits, so the machine
// may call it from any goroutine.
type fyneView struct {
	app    fyne.App
	window fyne.Window

	mu      sync.Mutex
	machine *autoclicker.Machine

	modeText     *canvas.Text
	statusLabel  *widget.Label
	unsavedLabel *widget.Label
	errorText    *canvas.Text
	form         *widget.Form
	entries      map[autoclicker.Field]*fieldEntry
	formItems    map[autoclicker.Field]*widget.FormItem

	configBtn     *widget.Button
	saveBtn       *widget.Button
	saveCloseBtn  *widget.Button
	activateBtn   *widget.Button
	deactivateBtn *widget.Button

	// UI goroutine only.
	syncing  bool
	rendered bool
	lastMode autoclicker.Mode
}

func (v *fyneView) bind(m *autoclicker.Machine) {
	v.mu.Lock()
	v.machine = m
	v.mu.Unlock()
}

func (v *fyneView) current() *autoclicker.Machine {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine
}

func (v *fyneView) signal(sig autoclicker.Signal) {
	if m := v.current(); m != nil {
		m.Handle(sig)
	}
}

func (v *fyneView) Render(mode autoclicker.Mode, cfg autoclicker.Config, unsaved bool) {
	fyne.Do(func() {
		v.apply(mode, cfg, unsaved)
	})
}

func (v *fyneView) apply(mode autoclicker.Mode, cfg autoclicker.Config, unsaved bool) {
	modeChanged := !v.rendered || mode != v.lastMode
	v.rendered = true
	v.lastMode = mode

	v.modeText.Text = strings.ToUpper(mode.String())
	v.modeText.Color = modeColor(mode)
	v.modeText.Refresh()
	v.statusLabel.SetText(strings.Join(statusLines(mode, cfg), "\n"))

	// Entries are the source of the draft while editing; only overwrite them
	// when the draft was reset or committed.
	if modeChanged || !unsaved {
		v.syncing = true
		for field, entry := range v.entries {
			entry.SetText(strconv.Itoa(cfg.Get(field)))
		}
		v.syncing = false
	}
	for field, item := range v.formItems {
		if isKeyField(field) {
			item.HintText = keycode.Name(cfg.Get(field))
		}
	}
	v.form.Refresh()

	configuring := mode == autoclicker.ModeConfiguring
	for _, entry := range v.entries {
		if configuring {
			entry.Enable()
		} else {
			entry.Disable()
		}
	}
	setEnabled(v.saveBtn, configuring)
	setEnabled(v.saveCloseBtn, configuring)
	setEnabled(v.activateBtn, !configuring && mode != autoclicker.ModeActive)
	setEnabled(v.deactivateBtn, mode == autoclicker.ModeActive)
	if configuring {
		v.configBtn.SetText("Close configuration")
	} else {
		v.configBtn.SetText("Configure")
	}
	if unsaved {
		v.unsavedLabel.Show()
	} else {
		v.unsavedLabel.Hide()
	}
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
		return
	}
	btn.Disable()
}

func (v *fyneView) PromptExit() {
	fyne.Do(func() {
		var d dialog.Dialog
		answer := func(choice autoclicker.ExitChoice) func() {
			return func() {
				d.Hide()
				if m := v.current(); m != nil {
					m.ConfirmExit(choice)
				}
			}
		}

		saveBtn := widget.NewButton("Save", nil)
		saveBtn.Importance = widget.HighImportance
		discardBtn := widget.NewButton("Discard", nil)
		cancelBtn := widget.NewButton("Cancel", nil)
		content := container.NewVBox(
			widget.NewLabel("You have unsaved changes. Save them before leaving configuration?"),
			container.NewGridWithColumns(3, saveBtn, discardBtn, cancelBtn),
		)
		d = dialog.NewCustomWithoutButtons("Unsaved changes", content, v.window)
		saveBtn.OnTapped = answer(autoclicker.ExitSave)
		discardBtn.OnTapped = answer(autoclicker.ExitDiscard)
		cancelBtn.OnTapped = answer(autoclicker.ExitCancel)
		d.Show()
	})
}

func (v *fyneView) Notify(msg string) {
	fyne.Do(func() {
		dialog.ShowInformation("burstclicker", msg, v.window)
	})
}

func (v *fyneView) ReportError(err error) {
	fyne.Do(func() {
		v.errorText.Text = err.Error()
		v.errorText.Refresh()
		dialog.ShowError(err, v.window)
	})
}

func (v *fyneView) showStartupError(err error) {
	text := err.Error()
	if isPermissionError(err) {
		text = permissionDeniedHint()
	} else if errors.Is(err, syscall.EBUSY) {
		text = "Input device is in use by another app. Close the other app and try again."
	}
	fyne.Do(func() {
		v.errorText.Text = text
		v.errorText.Refresh()
	})
}

// fieldEntry is an Entry that hands Escape to onEscape. A focused widget
// receives typed keys instead of the canvas.
type fieldEntry struct {
	widget.Entry
	onEscape func()
}

func newFieldEntry(onEscape func()) *fieldEntry {
	e := &fieldEntry{onEscape: onEscape}
	e.ExtendBaseWidget(e)
	return e
}

func (e *fieldEntry) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(ev)
}

func newFyneView(fApp fyne.App, window fyne.Window) *fyneView {
	v := &fyneView{
		app:          fApp,
		window:       window,
		modeText:     canvas.NewText("STARTING", modeColor(autoclicker.ModeIdle)),
		statusLabel:  widget.NewLabel(""),
		unsavedLabel: widget.NewLabel("Unsaved changes"),
		errorText:    canvas.NewText("", theme.Color(theme.ColorNameError)),
		entries:      make(map[autoclicker.Field]*fieldEntry),
		formItems:    make(map[autoclicker.Field]*widget.FormItem),
	}
	v.modeText.TextStyle = fyne.TextStyle{Bold: true}
	v.modeText.TextSize = 22
	v.unsavedLabel.Importance = widget.WarningImportance
	v.unsavedLabel.Hide()

	v.form = widget.NewForm()
	for _, field := range autoclicker.Fields() {
		entry := newFieldEntry(func() { v.signal(autoclicker.SignalEscape) })
		entry.Disable()
		entry.OnChanged = func(text string) {
			if v.syncing {
				return
			}
			if m := v.current(); m != nil {
				m.EditField(field, autoclicker.ParseFieldInput(text))
			}
		}
		item := widget.NewFormItem(fieldLabel(field), entry)
		v.entries[field] = entry
		v.formItems[field] = item
		v.form.AppendItem(item)
	}

	v.configBtn = widget.NewButton("Configure", func() { v.signal(autoclicker.SignalConfigToggle) })
	v.saveBtn = widget.NewButton("Save", func() { v.signal(autoclicker.SignalSave) })
	v.saveCloseBtn = widget.NewButton("Save & close", func() {
		if m := v.current(); m != nil {
			m.ConfirmExit(autoclicker.ExitSave)
		}
	})
	v.activateBtn = widget.NewButton("Activate", func() { v.signal(autoclicker.SignalActivate) })
	v.deactivateBtn = widget.NewButton("Deactivate", func() { v.signal(autoclicker.SignalDeactivate) })
	v.activateBtn.Importance = widget.HighImportance
	v.saveCloseBtn.Importance = widget.HighImportance
	for _, btn := range []*widget.Button{v.configBtn, v.saveBtn, v.saveCloseBtn, v.activateBtn, v.deactivateBtn} {
		btn.Disable()
	}
	return v
}

func (v *fyneView) content(logPane fyne.CanvasObject) fyne.CanvasObject {
	titleText := canvas.NewText("BURST CLICKER", color.NRGBA{R: 0xff, G: 0x75, B: 0x75, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 30

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0xff, G: 0x66, B: 0x66, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	statusCard := widget.NewCard("Status", "", container.NewVBox(v.modeText, v.statusLabel))
	configCard := widget.NewCard("Configuration", "", container.NewVBox(
		v.form,
		v.unsavedLabel,
		container.NewGridWithColumns(3, v.configBtn, v.saveBtn, v.saveCloseBtn),
	))
	controlsRow := container.NewGridWithColumns(2, statusCard, configCard)

	mainPanel := container.NewPadded(container.NewVBox(
		titleText,
		accentLine,
		controlsRow,
		v.errorText,
		container.NewGridWithColumns(2, v.activateBtn, v.deactivateBtn),
	))
	if logPane == nil {
		return mainPanel
	}
	split := container.NewVSplit(mainPanel, widget.NewCard("Logs", "", logPane))
	split.SetOffset(0.72)
	return split
}

func (v *fyneView) installTray() {
	desk, ok := v.app.(desktop.App)
	if !ok {
		return
	}
	desk.SetSystemTrayMenu(fyne.NewMenu("burstclicker",
		fyne.NewMenuItem("Activate", func() { v.signal(autoclicker.SignalActivate) }),
		fyne.NewMenuItem("Deactivate", func() { v.signal(autoclicker.SignalDeactivate) }),
		fyne.NewMenuItem("Configure", func() {
			v.window.Show()
			v.signal(autoclicker.SignalConfigToggle)
		}),
		fyne.NewMenuItem("Show window", func() { v.window.Show() }),
	))
}

func runUI(cfg config) error {
	fApp := app.NewWithID("burstclicker")
	fApp.Settings().SetTheme(newClickerTheme())

	window := fApp.NewWindow("Burst Clicker")
	window.Resize(fyne.NewSize(780, 520))
	window.CenterOnScreen()

	view := newFyneView(fApp, window)

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 140))

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	appendLogLine := func(line string) {
		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}

	var logPane fyne.CanvasObject
	if debugLogsEnabled() {
		logPane = logScroll
	}
	logger := newSlogLogger(cfg.logLevel, appendLogLine)

	requestQuit := func() {
		fyne.Do(fApp.Quit)
	}

	window.SetContent(view.content(logPane))
	window.SetCloseIntercept(func() {
		fApp.Quit()
	})
	window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			view.signal(autoclicker.SignalEscape)
		}
	})
	view.installTray()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			requestQuit()
		}
	}()

	var (
		appMu   sync.Mutex
		running *clickerApp
		closed  bool
	)
	go func() {
		logger.Info("Initializing input backend")
		a, err := startApp(cfg, logger, view, requestQuit)
		if err != nil {
			logger.Error("Failed to start", "err", err)
			view.showStartupError(fmt.Errorf("failed to start: %w", err))
			return
		}

		appMu.Lock()
		if closed {
			appMu.Unlock()
			a.close()
			return
		}
		running = a
		appMu.Unlock()
		logger.Info("Initialization complete")
	}()

	window.ShowAndRun()

	appMu.Lock()
	closed = true
	a := running
	appMu.Unlock()
	if a != nil {
		a.close()
	}
	return nil
}
