// Package main 是仪表盘 CLI 客户端的入口点。
package main

import "soul-lifter-go/internal/dashboard"

func main() {
	dashboard.Execute()
}
