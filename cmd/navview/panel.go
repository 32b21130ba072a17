package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

type panel struct {
	mode   *widget.Text
	info   *widget.Text
	status *widget.Text
}

// newPanel builds the right-hand control panel with plain colored buttons.
func newPanel(g *Game) (*ebitenui.UI, *panel) {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x10, G: 0x14, B: 0x1c, A: 230})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	label := func() *widget.Text {
		return widget.NewText(
			widget.TextOpts.Text("", &face, white),
			widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})),
		)
	}
	button := func(text string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
			widget.ButtonOpts.Text(text, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Stretch: true})),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { onClick() }),
		)
	}

	p := &panel{mode: label(), info: label(), status: label()}

	box := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 12, Bottom: 12, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionEnd,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
				StretchVertical:    true,
			}),
		),
	)
	box.AddChild(p.mode)
	box.AddChild(button("Static / dynamic [S]", g.toggleStatic))
	box.AddChild(button("Replan [R]", g.replan))
	box.AddChild(button("Copy path [C]", g.copyPath))
	box.AddChild(p.info)
	box.AddChild(p.status)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(box)
	return &ebitenui.UI{Container: root}, p
}

func (g *Game) refreshPanel() {
	if g.panel == nil {
		return
	}
	if g.scene.Trigger.Config().RecalculateOnTargetChange {
		g.panel.mode.Label = "mode: dynamic"
	} else {
		g.panel.mode.Label = "mode: static"
	}
	start, goal, _ := g.scene.Trigger.EndpointCells()
	g.panel.info.Label = fmt.Sprintf("agent %v\ngoal %v\nsearches %d\nt %.1fs",
		start, goal, g.scene.Trigger.Searches(), g.world.Elapsed().Seconds())
	g.panel.status.Label = g.status
}
