package ui

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"SharedBoard/internal/state"
	"SharedBoard/internal/stroke"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    stroke.Color
	OnTapped func(stroke.Color)
}

func newColorSwatch(c stroke.Color, tapped func(stroke.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar owns the current tool state. All of its callbacks, and Tools,
// run on the fyne event goroutine.
type Toolbar struct {
	tools   state.ToolState
	palette []state.NamedColor
	window  fyne.Window

	shapeButtons map[stroke.ShapeKind]*widget.Button
	eraser       *widget.Button
	widthLabel   *widget.Label
	current      *canvas.Rectangle

	// OnExport is called with "png" or "pdf".
	OnExport func(format string)
}

func NewToolbar(palette []state.NamedColor, window fyne.Window) *Toolbar {
	t := &Toolbar{
		tools:        state.Default(),
		palette:      palette,
		window:       window,
		shapeButtons: make(map[stroke.ShapeKind]*widget.Button),
	}
	if len(palette) > 0 {
		t.tools = t.tools.WithColor(palette[0].Color)
	}
	return t
}

// Tools returns a copy of the current selection.
func (t *Toolbar) Tools() state.ToolState {
	return t.tools
}

func (t *Toolbar) Object() fyne.CanvasObject {
	swatches := container.NewHBox()
	for _, nc := range t.palette {
		swatches.Add(newColorSwatch(nc.Color, t.selectColor))
	}
	t.current = canvas.NewRectangle(t.tools.Color)
	t.current.SetMinSize(fyne.NewSize(28, 28))

	choose := widget.NewButton("Choose Color", func() {
		picker := dialog.NewColorPicker("Choose a Color", "", func(c color.Color) {
			t.selectColor(stroke.FromColor(c))
		}, t.window)
		picker.Advanced = true
		picker.Show()
	})

	t.widthLabel = widget.NewLabel(strconv.Itoa(t.tools.StrokeWidth))
	slider := widget.NewSlider(state.MinStrokeWidth, state.MaxStrokeWidth)
	slider.Step = 1
	slider.SetValue(float64(t.tools.StrokeWidth))
	slider.OnChanged = func(v float64) {
		t.tools = t.tools.WithStrokeWidth(int(v))
		t.widthLabel.SetText(strconv.Itoa(t.tools.StrokeWidth))
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 35)), slider)

	shapes := container.NewHBox()
	for _, k := range stroke.Shapes {
		btn := widget.NewButton(k.String(), func() {
			t.tools = t.tools.WithShape(k)
			t.refreshButtons()
		})
		t.shapeButtons[k] = btn
		shapes.Add(btn)
	}
	t.eraser = widget.NewButton("Eraser", func() {
		t.tools = t.tools.WithEraser()
		t.refreshButtons()
	})
	t.refreshButtons()

	exports := container.NewHBox(
		widget.NewButton("PNG", func() { t.export("png") }),
		widget.NewButton("PDF", func() { t.export("pdf") }),
	)

	return container.NewHBox(
		widget.NewLabel("Color:"), t.current, swatches, choose,
		widget.NewSeparator(),
		widget.NewLabel("Stroke:"), sliderBox, t.widthLabel,
		widget.NewSeparator(),
		shapes, t.eraser,
		layout.NewSpacer(),
		exports,
	)
}

func (t *Toolbar) selectColor(c stroke.Color) {
	t.tools = t.tools.WithColor(c)
	if t.current != nil {
		t.current.FillColor = c
		t.current.Refresh()
	}
	t.refreshButtons()
}

func (t *Toolbar) refreshButtons() {
	for k, btn := range t.shapeButtons {
		imp := widget.MediumImportance
		if k == t.tools.Shape && !t.tools.Eraser {
			imp = widget.HighImportance
		}
		if btn.Importance != imp {
			btn.Importance = imp
			btn.Refresh()
		}
	}
	if t.eraser == nil {
		return
	}
	imp := widget.MediumImportance
	if t.tools.Eraser {
		imp = widget.HighImportance
	}
	if t.eraser.Importance != imp {
		t.eraser.Importance = imp
		t.eraser.Refresh()
	}
}

func (t *Toolbar) export(format string) {
	if t.OnExport != nil {
		t.OnExport(format)
	}
}
