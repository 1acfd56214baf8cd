package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
)

// BalancesScreen показывает балансы хранилищ пула, кошелька и счётчики сделок.
type BalancesScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	help     help.Model
	table    table.Model
	services ui.ServiceProvider

	loading bool
	last    ui.BalancesMsg
	updated time.Time
}

// NewBalancesScreen creates the balances screen
func NewBalancesScreen(services ui.ServiceProvider) *BalancesScreen {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Account", Width: 14},
			{Title: "Address", Width: 46},
			{Title: "Balance", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	return &BalancesScreen{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		table:    t,
		services: services,
	}
}

func (s *BalancesScreen) Init() tea.Cmd {
	return s.refresh()
}

func (s *BalancesScreen) refresh() tea.Cmd {
	reader := s.services.Reader()
	scenario := s.services.Scenario()
	if reader == nil || scenario == nil {
		return nil
	}
	s.loading = true
	ctx := s.services.Context()
	owner := s.services.Payer()
	sess := scenario.Session()

	return func() tea.Msg {
		msg := ui.BalancesMsg{}
		sol, err := reader.SOLBalance(ctx, owner)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.SOL = sol
		if sess.MintA.IsZero() || sess.MintB.IsZero() {
			return msg
		}

		if msg.Balances, err = reader.PoolBalances(ctx, owner, sess.MintA, sess.MintB, sess.LPMint); err != nil {
			msg.Err = err
			return msg
		}
		if !sess.Pool.IsZero() {
			// пула может ещё не быть в сети, это не ошибка экрана
			msg.Stats, _ = reader.PoolStats(ctx, sess.MintA, sess.MintB)
		}
		msg.CounterA, _ = reader.TradeCounter(ctx, sess.MintA)
		msg.CounterB, _ = reader.TradeCounter(ctx, sess.MintB)
		return msg
	}
}

// Update handles screen updates
func (s *BalancesScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Refresh):
			return s, s.refresh()
		}
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return s, cmd

	case ui.BalancesMsg:
		s.loading = false
		s.last = msg
		s.updated = time.Now()
		s.table.SetRows(balanceRows(msg))
	}
	return s, nil
}

func balanceRow(name string, b hookamm.TokenBalance) table.Row {
	addr := "-"
	if !b.Account.IsZero() {
		addr = b.Account.String()
	}
	amount := b.UIAmount.String()
	if !b.Exists {
		amount = "not created"
	}
	return table.Row{name, addr, amount}
}

func balanceRows(msg ui.BalancesMsg) []table.Row {
	if msg.Balances == nil {
		return nil
	}
	return []table.Row{
		balanceRow("Pool A", msg.Balances.PoolA),
		balanceRow("Pool B", msg.Balances.PoolB),
		balanceRow("Wallet A", msg.Balances.UserA),
		balanceRow("Wallet B", msg.Balances.UserB),
		balanceRow("Wallet LP", msg.Balances.UserLP),
	}
}

func counterLine(label string, c *hookamm.MintTradeCounter) string {
	if c == nil {
		return fmt.Sprintf("%s: no counter", label)
	}
	return fmt.Sprintf("%s: in %d (vol %d) · out %d (vol %d) · last %s",
		label, c.IncomingTransfers, c.TotalIncomingVolume,
		c.OutgoingTransfers, c.TotalOutgoingVolume,
		c.LastUpdatedTime().Format(time.DateTime))
}

// View renders the balances screen
func (s *BalancesScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("💧 Pool balances"))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(style.MutedStyle.Render("loading..."))
		b.WriteString("\n")
	case s.last.Err != nil:
		b.WriteString(style.ErrorStyle.Render(s.last.Err.Error()))
		b.WriteString("\n")
	default:
		b.WriteString(style.InfoStyle.Render("SOL " + hookamm.FormatSOL(s.last.SOL)))
		b.WriteString("\n")
	}

	if s.last.Balances != nil {
		var side strings.Builder
		if st := s.last.Stats; st != nil {
			side.WriteString(style.SubHeaderStyle.Render(fmt.Sprintf("liquidity %d · price A→B %s",
				st.TotalLiquidity, st.PriceAInB.StringFixed(6))))
			side.WriteString("\n")
		}
		side.WriteString(style.MutedStyle.Render(counterLine("counter A", s.last.CounterA)))
		side.WriteString("\n")
		side.WriteString(style.MutedStyle.Render(counterLine("counter B", s.last.CounterB)))

		panel := lipgloss.NewStyle().Width(max(style.AdaptiveWidth(s.width, 40), 20)).PaddingLeft(2)
		b.WriteString(style.AdaptiveJoinHorizontal(s.width, s.table.View(), panel.Render(side.String())))
		b.WriteString("\n")
	}
	if !s.updated.IsZero() {
		b.WriteString(style.MutedStyle.Render("updated " + s.updated.Format("15:04:05")))
		b.WriteString("\n")
	}

	b.WriteString(s.help.View(s.keyMap.HelpFor(ui.RouteBalances)))
	return b.String()
}

// SetSize sets the screen size
func (s *BalancesScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
}
