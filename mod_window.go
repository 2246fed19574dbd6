package infinity

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"github.com/gekko3d/infinity/camera"
)

// wheelStep converts one glfw scroll unit to pixel-like wheel delta.
const wheelStep = 100

type WindowState struct {
	window *glfw.Window
	Width  int
	Height int
	Title  string
}

// WindowModule opens a glfw window and feeds its input into the Input
// resource. Closing the window (or pressing Escape) moves the app to
// CloseState. InputModule must be installed first.
type WindowModule struct {
	Width      int
	Height     int
	Title      string
	CloseState State
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	input := Resource[Input](app)
	if input == nil {
		panic("WindowModule requires InputModule")
	}
	ws, err := openWindow(m.Width, m.Height, m.Title)
	if err != nil {
		panic(err)
	}
	bindInput(ws.window, input)
	input.Push(camera.Resize{Width: float32(ws.Width), Height: float32(ws.Height)})
	cmd.AddResources(ws)

	closeState := m.CloseState
	app.UseSystem(System(func(ws *WindowState, cmd *Commands) {
		glfw.PollEvents()
		if ws.window.ShouldClose() {
			cmd.ChangeState(closeState)
		}
	}).InStage(Prelude))

	if app.stateful {
		app.UseSystem(System(func(ws *WindowState) {
			ws.window.Destroy()
			glfw.Terminate()
		}).InStage(Finale).InState(OnExit(closeState)))
	}
}

func openWindow(width, height int, title string) (*WindowState, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	return &WindowState{window: win, Width: width, Height: height, Title: title}, nil
}

func bindInput(win *glfw.Window, input *Input) {
	var cx, cy float32
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		cx, cy = float32(x), float32(y)
		input.Push(camera.PointerMove{X: cx, Y: cy})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			input.Push(camera.PointerDown{X: cx, Y: cy})
		case glfw.Release:
			input.Push(camera.PointerUp{X: cx, Y: cy})
		}
	})
	win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			input.Push(camera.PointerLeave{})
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		input.Push(camera.Wheel{DeltaY: float32(-yoff) * wheelStep})
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		dir, ok := keyDirections[key]
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			input.Push(camera.KeyDown{Dir: dir})
		case glfw.Release:
			input.Push(camera.KeyUp{Dir: dir})
		}
	})
	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		input.Push(camera.Resize{Width: float32(width), Height: float32(height)})
	})
}

var keyDirections = map[glfw.Key]camera.Direction{
	glfw.KeyW:     camera.Forward,
	glfw.KeyUp:    camera.Forward,
	glfw.KeyS:     camera.Backward,
	glfw.KeyDown:  camera.Backward,
	glfw.KeyA:     camera.Left,
	glfw.KeyLeft:  camera.Left,
	glfw.KeyD:     camera.Right,
	glfw.KeyRight: camera.Right,
	glfw.KeyE:     camera.Up,
	glfw.KeyQ:     camera.Down,
}
