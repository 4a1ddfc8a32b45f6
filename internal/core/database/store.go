package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"gorm.io/gorm"
)

// ErrTxStore 事务内的 Store 不负责连接池生命周期
var ErrTxStore = errors.New("database: store is bound to a transaction")

// Result 写语句的结果；自增 ID 由 gorm Create 回填到实体上
type Result struct {
	RowsAffected int64
}

// Store 持有连接池，启动时构建、关闭时释放，通过构造函数注入到 repo/service
type Store struct {
	db   *gorm.DB
	inTx bool

	closeOnce sync.Once
	closeErr  error
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// DB 返回带 ctx 的 gorm 句柄，供 repo 构造查询
func (s *Store) DB(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

// Query 执行参数化查询并扫描到 dest（结构体、切片或标量）
func (s *Store) Query(ctx context.Context, dest any, query string, args ...any) error {
	return MapError(s.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error)
}

// Execute 执行参数化写语句
func (s *Store) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	res := s.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return Result{}, MapError(res.Error)
	}
	return Result{RowsAffected: res.RowsAffected}, nil
}

// SnapshotTx 统计等多语句读取使用：同一事务、可重复读
var SnapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Transaction fn 返回 nil 提交，返回 error 或 panic 回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error, opts ...*sql.TxOptions) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	}, opts...)
	return MapError(err)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SQLDB 底层连接池（指标采集用）
func (s *Store) SQLDB() (*sql.DB, error) { return s.db.DB() }

// Close 关闭连接池；重复调用返回第一次的结果
func (s *Store) Close() error {
	if s.inTx {
		return ErrTxStore
	}
	s.closeOnce.Do(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = err
			return
		}
		s.closeErr = sqlDB.Close()
	})
	return s.closeErr
}
