package ratelimit_test

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goCoord/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func ExampleLimiter_IsAllowed() {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter, err := ratelimit.New(rdb, 1, 2)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	fmt.Println(limiter.IsAllowed(ctx, "api:user-1"))
	fmt.Println(limiter.IsAllowed(ctx, "api:user-1"))
	// Output:
	// true
	// true
}
