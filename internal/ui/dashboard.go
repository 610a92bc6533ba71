package ui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/export"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/ui/component"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/ui/style"
)

const fetchTimeout = 60 * time.Second

// SnapshotService computes wallet snapshots for the dashboard.
type SnapshotService interface {
	WalletSnapshot(ctx context.Context, user string, horizons []int, asOf time.Time) (*portfolio.WalletSnapshot, error)
}

type dashboardState int

const (
	stateLoading dashboardState = iota
	stateReady
	stateError
)

// Messages
type snapshotMsg struct {
	snapshot *portfolio.WalletSnapshot
}

type snapshotErrMsg struct {
	err error
}

type exportedMsg struct {
	path string
	err  error
}

// Dashboard is the root bubbletea model showing one wallet's portfolio.
type Dashboard struct {
	service  SnapshotService
	exporter *export.SnapshotExporter
	logger   *zap.Logger

	wallet   string
	horizons []int

	state    dashboardState
	snapshot *portfolio.WalletSnapshot
	err      error

	horizonIdx int
	statusLine string
	showHelp   bool

	keys    KeyMap
	spinner spinner.Model

	width  int
	height int
}

// NewDashboard creates the dashboard model for one wallet.
func NewDashboard(service SnapshotService, exporter *export.SnapshotExporter, wallet string, horizons []int, logger *zap.Logger) *Dashboard {
	if len(horizons) == 0 {
		horizons = portfolio.DefaultHorizons
	}
	sorted := append([]int(nil), horizons...)
	sort.Ints(sorted)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(style.DefaultPalette().Primary)

	return &Dashboard{
		service:  service,
		exporter: exporter,
		logger:   logger.Named("dashboard"),
		wallet:   wallet,
		horizons: sorted,
		state:    stateLoading,
		keys:     DefaultKeyMap(),
		spinner:  sp,
	}
}

// Init starts the spinner and kicks off the first fetch.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.fetchSnapshot())
}

// Update handles messages.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		return d, nil

	case tea.KeyMsg:
		return d.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case snapshotMsg:
		d.state = stateReady
		d.snapshot = msg.snapshot
		d.err = nil
		d.statusLine = fmt.Sprintf("updated %s", time.Now().Format("15:04:05"))
		return d, nil

	case snapshotErrMsg:
		d.state = stateError
		d.err = msg.err
		return d, nil

	case exportedMsg:
		if msg.err != nil {
			d.statusLine = fmt.Sprintf("export failed: %v", msg.err)
		} else {
			d.statusLine = fmt.Sprintf("exported to %s", msg.path)
		}
		return d, nil
	}

	return d, nil
}

func (d *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, d.keys.Quit):
		return d, tea.Quit

	case key.Matches(msg, d.keys.Refresh):
		d.state = stateLoading
		d.statusLine = ""
		return d, tea.Batch(d.spinner.Tick, d.fetchSnapshot())

	case key.Matches(msg, d.keys.NextHorizon):
		d.horizonIdx = (d.horizonIdx + 1) % len(d.horizons)
		return d, nil

	case key.Matches(msg, d.keys.PrevHorizon):
		d.horizonIdx = (d.horizonIdx - 1 + len(d.horizons)) % len(d.horizons)
		return d, nil

	case key.Matches(msg, d.keys.Export):
		if d.snapshot != nil && d.exporter != nil {
			return d, d.exportSnapshot()
		}
		return d, nil

	case key.Matches(msg, d.keys.Help):
		d.showHelp = !d.showHelp
		return d, nil
	}

	return d, nil
}

func (d *Dashboard) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snapshot, err := d.service.WalletSnapshot(ctx, d.wallet, d.horizons, time.Now().UTC())
		if err != nil {
			d.logger.Error("snapshot fetch failed", zap.Error(err))
			return snapshotErrMsg{err: err}
		}
		return snapshotMsg{snapshot: snapshot}
	}
}

func (d *Dashboard) exportSnapshot() tea.Cmd {
	snapshot := d.snapshot
	return func() tea.Msg {
		path, err := d.exporter.ExportSnapshot(snapshot)
		return exportedMsg{path: path, err: err}
	}
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	palette := style.DefaultPalette()

	titleStyle := lipgloss.NewStyle().Foreground(palette.Primary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(palette.TextMuted)

	header := titleStyle.Render("Polymarket Portfolio") + "  " + mutedStyle.Render(shortWallet(d.wallet))

	var body string
	switch d.state {
	case stateLoading:
		body = fmt.Sprintf("\n  %s fetching wallet data...\n", d.spinner.View())
	case stateError:
		errStyle := lipgloss.NewStyle().Foreground(palette.Error)
		body = "\n  " + errStyle.Render(fmt.Sprintf("error: %v", d.err)) + "\n" +
			mutedStyle.Render("  press r to retry")
	case stateReady:
		body = d.viewSnapshot()
	}

	footer := d.viewFooter(mutedStyle)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (d *Dashboard) viewSnapshot() string {
	palette := style.DefaultPalette()
	mutedStyle := lipgloss.NewStyle().Foreground(palette.TextMuted)

	horizon := d.horizons[d.horizonIdx]
	series := d.snapshot.History[strconv.Itoa(horizon)]

	values := make([]float64, 0, len(series))
	for _, point := range series {
		values = append(values, point.Value)
	}

	width := d.width - 6
	if width < 20 {
		width = 20
	}

	spark := component.NewSparkline(width).SetData(values)
	spark.SetColor(style.PnLColor(spark.GetChangePercent()))

	chartTitle := fmt.Sprintf("value, last %dd  %s %+.2f%%", horizon, spark.GetTrend(), spark.GetChangePercent())

	var current float64
	if len(values) > 0 {
		current = values[len(values)-1]
	}

	stats := d.snapshot.Stats
	statsLine := fmt.Sprintf(
		"replayed $%.2f   open $%.2f   unrealized %s   realized %s   positions %d open / %d closed",
		current,
		stats.TotalOpenValue,
		renderSigned(stats.TotalUnrealizedPnl),
		renderSigned(stats.TotalRealizedPnl),
		stats.OpenPositionsCount,
		stats.ClosedPositionsCount,
	)

	sections := []string{
		"",
		"  " + mutedStyle.Render(chartTitle),
		"  " + spark.View(),
		"",
		"  " + statsLine,
		"",
		d.viewPositions(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (d *Dashboard) viewPositions() string {
	positions := d.snapshot.OpenPositions
	if len(positions) == 0 {
		return "  " + lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted).Render("no open positions")
	}

	table := component.NewTable().
		AddColumn("Market", 38, lipgloss.Left).
		AddColumn("Outcome", 8, lipgloss.Left).
		AddColumn("Size", 10, lipgloss.Right).
		AddColumn("Avg", 7, lipgloss.Right).
		AddColumn("Price", 7, lipgloss.Right).
		AddColumn("Value", 10, lipgloss.Right).
		AddColumn("PnL", 10, lipgloss.Right)

	// Largest positions first; cap rows so the table fits small terminals
	sorted := append([]polymarket.Position(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool {
		return polymarket.Float(sorted[i].CurrentValue) > polymarket.Float(sorted[j].CurrentValue)
	})

	maxRows := 10
	if len(sorted) < maxRows {
		maxRows = len(sorted)
	}

	for _, pos := range sorted[:maxRows] {
		pnl := polymarket.Float(pos.CashPnl)
		rowStyle := lipgloss.NewStyle().Foreground(style.PnLColor(pnl))
		table.AddStyledRow([]string{
			pos.Title,
			pos.Outcome,
			fmt.Sprintf("%.2f", polymarket.Float(pos.Size)),
			fmt.Sprintf("%.3f", polymarket.Float(pos.AvgPrice)),
			fmt.Sprintf("%.3f", polymarket.Float(pos.CurPrice)),
			fmt.Sprintf("%.2f", polymarket.Float(pos.CurrentValue)),
			renderSigned(pnl),
		}, rowStyle)
	}

	return table.View()
}

func (d *Dashboard) viewFooter(mutedStyle lipgloss.Style) string {
	var help string
	if d.showHelp {
		var lines []string
		for _, group := range d.keys.FullHelp() {
			lines = append(lines, renderBindings(group))
		}
		help = lipgloss.JoinVertical(lipgloss.Left, lines...)
	} else {
		help = renderBindings(d.keys.ShortHelp())
	}

	footer := "\n  " + mutedStyle.Render(help)
	if d.statusLine != "" {
		footer += "\n  " + mutedStyle.Render(d.statusLine)
	}
	return footer
}

func renderBindings(bindings []key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		out += b.Help().Key + " " + b.Help().Desc
	}
	return out
}

func renderSigned(value float64) string {
	return fmt.Sprintf("%+.2f", value)
}

func shortWallet(wallet string) string {
	if len(wallet) <= 12 {
		return wallet
	}
	return wallet[:6] + "…" + wallet[len(wallet)-4:]
}
