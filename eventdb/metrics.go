// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/binarybit/staking/metrics"
)

var (
	metricInsertedCounter      = metrics.LazyLoadCounter("eventdb_inserted_count")
	metricQueryParameters      = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricCriteriaLengthBucket = metrics.LazyLoadHistogramVec("eventdb_criteria_length_bucket", []string{"type"}, []int64{0, 1, 2, 5, 10, 25, 100})
	metricLimitBucket          = metrics.LazyLoadHistogramVec("eventdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *Filter) {
	metricCriteriaLengthBucket().ObserveWithLabels(int64(len(filter.CriteriaSet)), map[string]string{"type": "event"})

	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().ObserveWithLabels(int64(limit), map[string]string{"type": "event"})
	}

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0, 2)
		if c.Name != nil {
			paramsUsed = append(paramsUsed, "name")
		}
		if c.Account != nil {
			paramsUsed = append(paramsUsed, "account")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
