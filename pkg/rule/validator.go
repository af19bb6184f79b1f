// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
package rule

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxEntryNameLength = 255

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建并注册 tag name 函数.
func initValidator() {
	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
			inst.SetTagName("rule")
			registerBuiltins(inst)

			return
		}
	}

	inst = validator.New()
	inst.SetTagName("rule")
	registerBuiltins(inst)
}

// registerBuiltins 注册领域内置规则.
func registerBuiltins(v *validator.Validate) {
	// entryname: 文件/文件夹名称规则，不允许路径分隔符与控制字符
	_ = v.RegisterValidation("entryname", func(fl validator.FieldLevel) bool {
		return ValidEntryName(fl.Field().String())
	})
}

// ValidEntryName 校验文件或文件夹名称：非空白、长度受限、不含路径分隔符与 NUL.
func ValidEntryName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxEntryNameLength {
		return false
	}

	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}

	// 保留名，避免和路径展示冲突
	if name == "." || name == ".." {
		return false
	}

	return true
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate，若未初始化则先初始化.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 代理 RegisterValidation，确保已初始化.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidateStruct 对结构体执行完整校验，返回原始 error.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 包装 RegisterAlias，便于注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
