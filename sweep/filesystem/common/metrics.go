package common

import (
	"sync"
	"time"
)

// FileOperationMetrics counts file mutations. It is safe for concurrent use.
type FileOperationMetrics struct {
	mu               sync.RWMutex
	totalOperations  int64
	successfulOps    int64
	failedOps        int64
	bytesTransferred int64
	lastOperation    time.Time
	elapsed          time.Duration
}

// UpdateMetrics records one operation that began at start
func (m *FileOperationMetrics) UpdateMetrics(start time.Time, success bool, bytesTransferred int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalOperations++
	if success {
		m.successfulOps++
		m.bytesTransferred += bytesTransferred
	} else {
		m.failedOps++
	}
	m.lastOperation = time.Now()
	m.elapsed += m.lastOperation.Sub(start)
}

// GetMetrics returns the counters as a map suitable for structured logging
func (m *FileOperationMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_operations":        m.totalOperations,
		"successful_ops":          m.successfulOps,
		"failed_ops":              m.failedOps,
		"total_bytes_transferred": m.bytesTransferred,
		"last_operation":          m.lastOperation,
		"elapsed":                 m.elapsed,
	}
}
