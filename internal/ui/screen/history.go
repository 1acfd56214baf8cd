package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hookswap/internal/storage/models"
	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
)

const historyLimit = 50

// HistoryScreen – таблица последних отправленных транзакций.
type HistoryScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	help     help.Model
	table    table.Model
	services ui.ServiceProvider

	txs []*models.Transaction
	err error
}

// NewHistoryScreen creates the history screen
func NewHistoryScreen(services ui.ServiceProvider) *HistoryScreen {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 19},
			{Title: "Operation", Width: 28},
			{Title: "Status", Width: 10},
			{Title: "Signature", Width: 24},
			{Title: "Elapsed", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	return &HistoryScreen{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		table:    t,
		services: services,
	}
}

func (h *HistoryScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HistoryScreen) load() tea.Cmd {
	store := h.services.Store()
	if store == nil {
		return nil
	}
	ctx := h.services.Context()
	return func() tea.Msg {
		txs, err := store.ListTransactions(ctx, historyLimit, 0)
		return ui.HistoryMsg{Transactions: txs, Err: err}
	}
}

// Update handles screen updates
func (h *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, h.keyMap.Quit):
			return h, tea.Quit
		case key.Matches(msg, h.keyMap.Refresh):
			return h, h.load()
		}
		var cmd tea.Cmd
		h.table, cmd = h.table.Update(msg)
		return h, cmd

	case ui.HistoryMsg:
		h.err = msg.Err
		if msg.Err == nil {
			h.txs = msg.Transactions
			h.table.SetRows(historyRows(msg.Transactions))
		}

	case ui.WorkflowDoneMsg:
		return h, h.load()
	}
	return h, nil
}

func historyRows(txs []*models.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txs))
	for _, tx := range txs {
		status := tx.Status
		if tx.AlreadyProcessed {
			status += "*"
		}
		rows = append(rows, table.Row{
			tx.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			tx.Operation,
			status,
			shortSig(tx.Signature),
			fmt.Sprintf("%.2fs", tx.ExecutionTime),
		})
	}
	return rows
}

func shortSig(sig string) string {
	if len(sig) <= 20 {
		if sig == "" {
			return "-"
		}
		return sig
	}
	return sig[:8] + "…" + sig[len(sig)-8:]
}

// View renders the history screen
func (h *HistoryScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("🧾 Transaction history"))
	b.WriteString("\n")

	if h.err != nil {
		b.WriteString(style.ErrorStyle.Render(h.err.Error()))
		b.WriteString("\n")
	}
	if len(h.txs) == 0 {
		b.WriteString(style.MutedStyle.Render("no transactions yet"))
		b.WriteString("\n")
	} else {
		b.WriteString(h.table.View())
		b.WriteString("\n")
		if i := h.table.Cursor(); i >= 0 && i < len(h.txs) {
			tx := h.txs[i]
			if tx.ErrorMessage != "" {
				b.WriteString(style.WarningStyle.Render(tx.Kind + ": " + tx.ErrorMessage))
				b.WriteString("\n")
			}
			if tx.Signature != "" {
				b.WriteString(style.MutedStyle.Render(tx.Signature))
				b.WriteString("\n")
			}
		}
		b.WriteString(style.MutedStyle.Render("* already processed, recovered without resending"))
		b.WriteString("\n")
	}

	b.WriteString(h.help.View(h.keyMap.HelpFor(ui.RouteHistory)))
	return b.String()
}

// SetSize sets the screen size
func (h *HistoryScreen) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.help.Width = width
	if height > 12 {
		h.table.SetHeight(height - 10)
	}
}
