package ui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/tablekit/internal/ui/table"
)

// ApplyStartupKeys replays Vim-like tokens, literal text and mouse tokens
// against the app before the first frame. Commands produced along the way
// run synchronously; their selection and reorder results are fed back so a
// scripted drag completes before rendering.
//
// Mouse tokens: <Click:X,Y>, <Motion:X,Y>, <Release:X,Y>, <Drag:X1,Y1,X2,Y2>,
// <WheelUp>, <WheelDown>.
func ApplyStartupKeys(a *App, keys []string) {
	if len(keys) == 0 || a == nil {
		return
	}
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		// Leading backslash forces literal text (e.g., "\\<Space>").
		if strings.HasPrefix(token, `\`) {
			for _, r := range strings.TrimPrefix(token, `\`) {
				send(a, tea.KeyPressMsg{Code: r, Text: string(r)})
			}
			continue
		}
		for _, segment := range parseTokenSegments(token) {
			if !segment.isVimKey {
				for _, r := range segment.text {
					send(a, tea.KeyPressMsg{Code: r, Text: string(r)})
				}
				continue
			}
			msgs, ok := msgsFromToken(segment.text)
			if !ok {
				continue
			}
			for _, msg := range msgs {
				send(a, msg)
			}
		}
	}
}

// send delivers msg and settles the commands it produces.
func send(a *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := a.Update(next)
		for _, out := range runCmd(cmd) {
			switch out.(type) {
			case table.ReorderResultMsg, table.SelectionChangedMsg:
				queue = append(queue, out)
			}
		}
	}
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// tokenSegment is a parsed piece of a token: a <...> key or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into <...> keys and literal text.
// Example: "<Down>x" -> [{"<Down>", true}, {"x", false}]
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		startIdx := strings.Index(remaining, "<")
		if startIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if startIdx > 0 {
			segments = append(segments, tokenSegment{text: remaining[:startIdx]})
		}
		endIdx := strings.Index(remaining[startIdx:], ">")
		if endIdx == -1 {
			segments = append(segments, tokenSegment{text: remaining[startIdx:]})
			break
		}
		segments = append(segments, tokenSegment{text: remaining[startIdx : startIdx+endIdx+1], isVimKey: true})
		remaining = remaining[startIdx+endIdx+1:]
	}
	return segments
}

// msgsFromToken parses a <...> token into key or mouse messages.
func msgsFromToken(token string) ([]tea.Msg, bool) {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">")
	if name, args, found := strings.Cut(inner, ":"); found {
		return mouseMsgs(strings.ToLower(name), args)
	}
	switch strings.ToLower(inner) {
	case "wheelup":
		return []tea.Msg{tea.MouseWheelMsg{Button: tea.MouseWheelUp}}, true
	case "wheeldown":
		return []tea.Msg{tea.MouseWheelMsg{Button: tea.MouseWheelDown}}, true
	}
	msg, ok := keyMsgFromName(inner)
	if !ok {
		return nil, false
	}
	return []tea.Msg{msg}, true
}

// keyMsgFromName maps Vim-like names such as Esc, CR, Space, S-Up and C-c to
// key presses.
func keyMsgFromName(name string) (tea.KeyPressMsg, bool) {
	switch strings.ToLower(name) {
	case "esc", "c-[", "escape":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}, true
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	case "s-up":
		return tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModShift}, true
	case "s-down":
		return tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModShift}, true
	case "home":
		return tea.KeyPressMsg{Code: tea.KeyHome}, true
	case "end":
		return tea.KeyPressMsg{Code: tea.KeyEnd}, true
	case "c-c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, true
	}
	return tea.KeyPressMsg{}, false
}

func mouseMsgs(name, args string) ([]tea.Msg, bool) {
	coords, ok := parseCoords(args)
	if !ok {
		return nil, false
	}
	switch {
	case name == "click" && len(coords) == 2:
		return []tea.Msg{tea.MouseClickMsg{X: coords[0], Y: coords[1], Button: tea.MouseLeft}}, true
	case name == "motion" && len(coords) == 2:
		return []tea.Msg{tea.MouseMotionMsg{X: coords[0], Y: coords[1], Button: tea.MouseLeft}}, true
	case name == "release" && len(coords) == 2:
		return []tea.Msg{tea.MouseReleaseMsg{X: coords[0], Y: coords[1], Button: tea.MouseLeft}}, true
	case name == "drag" && len(coords) == 4:
		return []tea.Msg{
			tea.MouseClickMsg{X: coords[0], Y: coords[1], Button: tea.MouseLeft},
			tea.MouseMotionMsg{X: coords[2], Y: coords[3], Button: tea.MouseLeft},
			tea.MouseReleaseMsg{X: coords[2], Y: coords[3], Button: tea.MouseLeft},
		}, true
	}
	return nil, false
}

func parseCoords(s string) ([]int, bool) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
