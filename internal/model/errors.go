package model

import (
	"errors"
	"fmt"
)

// 错误分级：
//   - UploadError / QueryError 只在调用边界（网络、鉴权、配额、传输级解码）产生；
//   - 提取阶段任何字段缺失都就地降级为空值，从不升级为错误；
//   - “未找到支撑片段”是正常的成功结果，不属于任何错误。

// ErrEmptyResponse 表示调用在传输层成功但响应未携带答案文本。
// 对外视作 QueryError 的一种。
var ErrEmptyResponse = errors.New("response carried no answer text")

// UploadError 表示一次文件上传失败（临时文件 I/O 或上传调用失败）。
// 逐文件上报，不中断同批次其余文件的处理。
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// QueryError 表示一次问答调用失败。失败的问答不会写入聊天历史。
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
