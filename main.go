package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"trip-backend/config"
	"trip-backend/router"
)

func main() {
	// 初始化配置
	config.InitConfig()

	// 设置Gin模式
	gin.SetMode(config.AppConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 注册业务路由
	router.RegisterRoutes(r)

	// 启动服务器
	addr := config.AppConfig.GetServerAddr()
	fmt.Printf("服务器启动在地址: %s\n", addr)
	fmt.Printf("Agent RPC地址: %s\n", config.AppConfig.GetAgentRPCAddr())

	log.Fatal(r.Run(":" + config.AppConfig.Server.Port))
}
