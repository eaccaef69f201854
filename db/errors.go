package db

import "errors"

// 业务错误：controller 层用 errors.Is 映射成 4xx
var (
	// ErrQuantityMismatch: selection 的 unit 数 != request.quantity
	ErrQuantityMismatch = errors.New("selection unit count does not match requested quantity")
	// ErrUnitUnavailable: 候选 unit 已被并发占用，整个预留回滚
	ErrUnitUnavailable = errors.New("one or more units are no longer available")
	// ErrUnitWrongProduct: unit 不属于请求的 product
	ErrUnitWrongProduct = errors.New("unit does not belong to the requested product")
	// ErrStaleReservation: 发放前发现预留被外部改回 available
	ErrStaleReservation = errors.New("reservation no longer holds for one or more units")
	// ErrOverReturn: 归还数量超过未归还余量
	ErrOverReturn = errors.New("return exceeds outstanding issued quantity")
	// ErrInvalidQuantity: 数量必须为正
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrAlreadyResolved: selection 已有终态，拒绝二次提交
	ErrAlreadyResolved = errors.New("selection already resolved")
	// ErrStatusConflict: request 不在期望状态（乐观并发守卫失败）
	ErrStatusConflict = errors.New("request is not in the expected status")
	// ErrProductHasUnits: 还有 unit 引用时禁止删除 product
	ErrProductHasUnits = errors.New("product still has units")
	// ErrNoOpenIssuance: unit 没有可归还的直发记录
	ErrNoOpenIssuance = errors.New("unit has no open direct issuance")
)
