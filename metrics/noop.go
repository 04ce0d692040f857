// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "io"

// noop backs every meter until InitializePrometheusMetrics is called, so
// commands run without --enable-metrics pay nothing for instrumentation.
type noop struct{}

var (
	_ Metrics           = noop{}
	_ CountMeter        = noop{}
	_ CountVecMeter     = noop{}
	_ GaugeMeter        = noop{}
	_ GaugeVecMeter     = noop{}
	_ HistogramVecMeter = noop{}
)

func defaultNoopMetrics() Metrics { return noop{} }

func (noop) GetOrCreateCountMeter(string) CountMeter                 { return noop{} }
func (noop) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return noop{} }
func (noop) GetOrCreateGaugeMeter(string) GaugeMeter                 { return noop{} }
func (noop) GetOrCreateGaugeVecMeter(string, []string) GaugeVecMeter { return noop{} }
func (noop) WriteText(io.Writer) error                               { return nil }
func (noop) GetOrCreateHistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return noop{}
}

func (noop) Add(int64)                                  {}
func (noop) Set(int64)                                  {}
func (noop) AddWithLabel(int64, map[string]string)      {}
func (noop) SetWithLabel(int64, map[string]string)      {}
func (noop) ObserveWithLabels(int64, map[string]string) {}
