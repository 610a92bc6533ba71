package component

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/ui/style"
)

// Sparkline renders a portfolio value series as a mini graph
type Sparkline struct {
	data  []float64
	width int
	style lipgloss.Style
	color lipgloss.Color
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		data:  make([]float64, 0),
		width: width,
		style: lipgloss.NewStyle(),
		color: style.DefaultPalette().Primary,
	}
}

// SetData sets the data points for the sparkline. When there are more
// points than columns, the series is downsampled to fit.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetWidth sets the width of the sparkline
func (s *Sparkline) SetWidth(width int) *Sparkline {
	s.width = width
	return s
}

// SetColor sets the color for the sparkline
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return s.style.Render(strings.Repeat("▁", s.width))
	}
	return s.style.Foreground(s.color).Render(s.generateSparkBlocks())
}

// generateSparkBlocks creates the spark characters based on data
func (s *Sparkline) generateSparkBlocks() string {
	points := s.resample()

	min, max := minMax(points)
	if min == max {
		return strings.Repeat("▄", len(points))
	}

	// Spark characters from lowest to highest
	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, value := range points {
		normalized := (value - min) / (max - min)
		index := int(normalized * float64(len(sparkChars)-1))
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}
		result.WriteRune(sparkChars[index])
	}
	return result.String()
}

// resample squeezes the series into at most width points, keeping the
// last value of each bucket so the newest point is always shown.
func (s *Sparkline) resample() []float64 {
	if len(s.data) <= s.width || s.width <= 0 {
		return s.data
	}

	points := make([]float64, s.width)
	for i := 0; i < s.width; i++ {
		end := (i + 1) * len(s.data) / s.width
		points[i] = s.data[end-1]
	}
	return points
}

// GetTrend returns the overall trend of the data
func (s *Sparkline) GetTrend() string {
	change := s.GetChangePercent()

	if math.Abs(change) < 0.1 {
		return "→"
	} else if change > 0 {
		return "↗"
	}
	return "↘"
}

// GetChangePercent returns the percentage change from first to last data point
func (s *Sparkline) GetChangePercent() float64 {
	if len(s.data) < 2 {
		return 0
	}

	first := s.data[0]
	last := s.data[len(s.data)-1]

	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

func minMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	min, max := data[0], data[0]
	for _, value := range data {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	return min, max
}
