package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/metrics"
	"github.com/czConstant/constant-pawn-protocol/domain/keys"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2
)

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// New redis pool
func New(name string, metrics metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   metrics,
		pools: pools,
	}
}

func (r *redImpl) getConn(command string) (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	pool := r.pools.Src
	if pool == nil {
		return nil, ErrGapTime
	}

	conn := pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}

	return conn, nil
}

func (r *redImpl) connDo(context ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn(commandName)
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}

	if err == redis.ErrNil {
		return reply, ErrNotFound
	}
	return reply, err
}

func (r *redImpl) Get(context ctx.Ctx, key string) ([]byte, error) {
	tags := []string{"func", "get", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(context, "GET", key))
	if err != nil {
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	return val, nil
}

func (r *redImpl) Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := []string{"func", "set", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	var err error
	if expire == Forever {
		r.met.BumpSum("ttl.forever", 1, tags...)
		_, err = r.connDo(context, "SET", key, val)
	} else {
		r.met.BumpAvg("ttl", expire.Seconds(), tags...)
		_, err = r.connDo(context, "SET", key, val, "PX", int(expire/time.Millisecond))
	}
	if err != nil {
		context.WithField("err", err).Error("Set redis failed")
		return err
	}
	return nil
}

func (r *redImpl) SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error {
	tags := []string{"func", "setnx", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	var err error
	if expire == Forever {
		_, err = r.connDo(context, "SET", key, val, "NX")
	} else {
		_, err = r.connDo(context, "SET", key, val, "PX", int(expire/time.Millisecond), "NX")
	}
	if err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("SetNX redis failed")
		return err
	}
	return nil
}

func (r *redImpl) Del(context ctx.Ctx, ks ...string) (int, error) {
	tags := []string{"func", "del", "cluster", r.name}
	defer r.met.BumpTime("time", tags...).End()

	args := make([]interface{}, len(ks))
	for i, k := range ks {
		args[i] = k
	}
	n, err := redis.Int(r.connDo(context, "DEL", args...))
	if err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("Del redis failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Exists(context ctx.Ctx, key string) (bool, error) {
	tags := []string{"func", "exists", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	n, err := redis.Int(r.connDo(context, "EXISTS", key))
	if err != nil && err != ErrNotFound {
		context.WithField("err", err).Error("Exists redis failed")
		return false, err
	}
	return n == 1, nil
}

func (r *redImpl) TTL(context ctx.Ctx, key string) (int, error) {
	tags := []string{"func", "ttl", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	ttl, err := redis.Int(r.connDo(context, "TTL", key))
	if err != nil {
		context.WithField("err", err).Error("TTL redis failed")
		return 0, err
	}
	if ttl == retTTLNoKey {
		return 0, ErrNotFound
	}
	return ttl, nil
}

func (r *redImpl) Incrby(context ctx.Ctx, key string, val int) (int64, error) {
	tags := []string{"func", "incrby", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	res, err := redis.Int64(r.connDo(context, "INCRBY", key, val))
	if err != nil {
		context.WithField("err", err).Error("Incrby redis failed")
		return 0, err
	}
	return res, nil
}

func (r *redImpl) Expire(context ctx.Ctx, key string, ttl time.Duration) error {
	tags := []string{"func", "expire", "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	if _, err := r.connDo(context, "PEXPIRE", key, int(ttl/time.Millisecond)); err != nil {
		context.WithField("err", err).Error("Expire redis failed")
		return err
	}
	return nil
}

func (r *redImpl) Name() string {
	return r.name
}
