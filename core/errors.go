package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分层：
//   - NOT_FITTED：在 Fit 之前调用排名/画像操作，调用方生命周期 bug，不可重试
//   - INVALID_INPUT：非法参数（如非正的 k），在引擎边界拒绝
//   - DIMENSION_MISMATCH：向量计算中的维度不一致，引擎边界兜底为 error 结果
//   - NOT_FOUND：存储层 key 不存在
//
// 注意：用户不在目录中不是错误，是合法输入，走冷启动路径。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FITTED", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "popularity", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFitted         = "NOT_FITTED"         // 模型未拟合
	ErrorCodeInvalidInput      = "INVALID_INPUT"      // 输入无效
	ErrorCodeDimensionMismatch = "DIMENSION_MISMATCH" // 向量维度不一致
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeInternalError     = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleCatalog    = "catalog"
	ModulePopularity = "popularity"
	ModuleProfile    = "profile"
	ModuleSimilarity = "similarity"
	ModuleEngine     = "engine"
	ModuleDataset    = "dataset"
	ModuleStore      = "store"
)

// ErrStoreNotFound 是存储层 key 不存在的标准错误。
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFitted 检查错误是否为 NOT_FITTED。
func IsNotFitted(err error) bool { return hasCode(err, ErrorCodeNotFitted) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsDimensionMismatch 检查错误是否为 DIMENSION_MISMATCH。
func IsDimensionMismatch(err error) bool { return hasCode(err, ErrorCodeDimensionMismatch) }

// IsStoreNotFound 检查错误是否为存储层的 NOT_FOUND。
func IsStoreNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }
