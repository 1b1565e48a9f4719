package utils

import (
	"log"

	"github.com/google/uuid"
)

// GetUUID 生成一次探查运行的标识，用于日志关联
func GetUUID() string {
	u1, err := uuid.NewUUID()
	if err != nil {
		log.Fatal(err)
	}
	return u1.String()
}
