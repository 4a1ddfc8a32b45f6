package utils

import "golang.org/x/crypto/bcrypt"

// DefaultCost 与原服务保持一致（bcrypt 10 轮）
const DefaultCost = bcrypt.DefaultCost

// dummyHash 用于“用户不存在”时做一次等价比较，避免时序差异暴露邮箱是否注册
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tienda-api-dummy"), bcrypt.MinCost)

func HashPassword(pw string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// BurnPassword 执行一次必然失败的比较
func BurnPassword(pw string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}
