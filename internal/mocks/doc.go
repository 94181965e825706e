// Package mocks provides test doubles for the stores and auth services.
//
// Most doubles use function fields, falling back to simple canned behavior:
//
//	jwtService := &mocks.MockJWTService{
//	    GenerateTokenFn: func(ctx context.Context, userID int64) (string, error) {
//	        return "token-for-test", nil
//	    },
//	}
//
// MockTaskStore and MockUserStore are working in-memory stores for handler
// and service tests. TestifyMockTaskStore is for tests that assert on exact
// calls.
package mocks
