package filesearch

import (
	"context"
	"fmt"
	"time"
)

// Operation 是远端长时操作（上传+索引）的句柄。
type Operation struct {
	Name     string                 `json:"name"`
	Done     bool                   `json:"done"`
	Error    *OperationError        `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Response map[string]interface{} `json:"response,omitempty"`
}

// OperationError 是远端操作失败时携带的错误信息。
type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OperationStatus 描述等待过程所处的状态。
type OperationStatus string

const (
	StatusSubmitted OperationStatus = "submitted"
	StatusPolling   OperationStatus = "polling"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
	StatusTimedOut  OperationStatus = "timed_out"
)

// OperationGetter 是轮询所需的最小接口，便于在测试中替换真实客户端。
type OperationGetter interface {
	GetOperation(ctx context.Context, name string) (*Operation, error)
}

// WaitForOperation 阻塞等待一个长时操作完成。
// 状态机：submitted -> polling -> {completed, failed, timed_out}。
// 每经过一个 interval 查询一次远端状态；超过 timeout 或 ctx 被取消时返回错误，
// 不存在无界等待。
func WaitForOperation(ctx context.Context, getter OperationGetter, op *Operation, interval, timeout time.Duration) (*Operation, error) {
	if op == nil {
		return nil, fmt.Errorf("wait for operation: nil operation handle")
	}
	// 上传响应可能直接返回已完成的操作
	if op.Done {
		return finishOperation(op)
	}

	status := StatusSubmitted
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for operation %s canceled (status=%s): %w", op.Name, status, ctx.Err())
		case <-deadline.C:
			status = StatusTimedOut
			return nil, fmt.Errorf("operation %s timed out after %s (status=%s)", op.Name, timeout, status)
		case <-ticker.C:
			status = StatusPolling
			latest, err := getter.GetOperation(ctx, op.Name)
			if err != nil {
				status = StatusFailed
				return nil, fmt.Errorf("poll operation %s: %w", op.Name, err)
			}
			if latest.Done {
				return finishOperation(latest)
			}
		}
	}
}

// finishOperation 将已完成的操作折叠为 completed 或 failed 结局。
func finishOperation(op *Operation) (*Operation, error) {
	if op.Error != nil {
		return nil, fmt.Errorf("operation %s failed (status=%s): [%d] %s", op.Name, StatusFailed, op.Error.Code, op.Error.Message)
	}
	return op, nil
}
