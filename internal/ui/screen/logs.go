package screen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/hookswap/internal/logger"
	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
)

const (
	logsLimit           = 500
	logsRefreshInterval = time.Second
)

type logsTickMsg time.Time

// LogsScreen показывает хвост буфера логов с фильтром по уровню.
type LogsScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	help     help.Model
	viewport viewport.Model
	services ui.ServiceProvider

	minLevel zapcore.Level
	entries  []logger.LogEntry
	follow   bool
}

// NewLogsScreen creates the logs screen
func NewLogsScreen(services ui.ServiceProvider) *LogsScreen {
	return &LogsScreen{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		services: services,
		minLevel: zapcore.DebugLevel,
		follow:   true,
	}
}

func logsTick() tea.Cmd {
	return tea.Tick(logsRefreshInterval, func(t time.Time) tea.Msg { return logsTickMsg(t) })
}

func (s *LogsScreen) Init() tea.Cmd {
	s.reload()
	return logsTick()
}

func (s *LogsScreen) reload() {
	buf := s.services.LogBuffer()
	if buf == nil {
		return
	}
	s.entries = buf.GetRecentLogs(logsLimit)
	s.viewport.SetContent(s.render())
	if s.follow {
		s.viewport.GotoBottom()
	}
}

// visible возвращает записи не ниже выбранного уровня.
func (s *LogsScreen) visible() []logger.LogEntry {
	out := make([]logger.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		lvl, err := zapcore.ParseLevel(e.Level)
		if err != nil {
			lvl = zapcore.InfoLevel
		}
		if lvl >= s.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func (s *LogsScreen) render() string {
	entries := s.visible()
	if len(entries) == 0 {
		return style.MutedStyle.Render("no log entries")
	}
	var b strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("%s %-5s ", e.Timestamp.Local().Format("15:04:05.000"), strings.ToUpper(e.Level))
		if e.Logger != "" {
			line += "[" + e.Logger + "] "
		}
		line += e.Message
		if f := formatFields(e.Fields); f != "" {
			line += "  " + f
		}
		b.WriteString(style.LevelStyle(e.Level).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *LogsScreen) setLevel(l zapcore.Level) {
	s.minLevel = l
	s.follow = true
	s.viewport.SetContent(s.render())
	s.viewport.GotoBottom()
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.FilterAll):
			s.setLevel(zapcore.DebugLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.setLevel(zapcore.InfoLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.setLevel(zapcore.WarnLevel)
			return s, nil
		case key.Matches(msg, s.keyMap.FilterError):
			s.setLevel(zapcore.ErrorLevel)
			return s, nil
		}
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		s.follow = s.viewport.AtBottom()
		return s, cmd

	case logsTickMsg:
		s.reload()
		return s, logsTick()
	}
	return s, nil
}

// View renders the logs screen
func (s *LogsScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("📜 Logs"))
	b.WriteString("\n")

	filter := "all"
	if s.minLevel > zapcore.DebugLevel {
		filter = s.minLevel.String() + "+"
	}
	status := fmt.Sprintf("filter: %s · %d entries", filter, len(s.visible()))
	if buf := s.services.LogBuffer(); buf != nil {
		total, spilled := buf.GetStats()
		status += fmt.Sprintf(" · total %d · spilled %d", total, spilled)
	}
	b.WriteString(style.InfoStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(s.viewport.View())
	b.WriteString("\n")
	b.WriteString(s.help.View(s.keyMap.HelpFor(ui.RouteLogs)))
	return b.String()
}

// SetSize sets the screen size
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
	s.viewport.Width = width
	if height > 8 {
		s.viewport.Height = height - 6
	}
	s.viewport.SetContent(s.render())
}
