package hutch

import (
	"context"
)

// Handler processes one delivery. Implementations are invoked once per
// delivery and must be safe for concurrent invocation.
type Handler interface {
	Invoke(ctx context.Context, client *Client, delivery Delivery) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, client *Client, delivery Delivery) error

// Invoke calls the wrapped function.
func (f HandlerFunc) Invoke(ctx context.Context, client *Client, delivery Delivery) error {
	return f(ctx, client, delivery)
}

// extractArg populates one handler argument, wrapping any failure with the
// argument's type name for error reporting.
func extractArg[P any, PP ExtractorPtr[P]](client *Client, delivery Delivery) (P, error) {
	var arg P
	if err := PP(&arg).Extract(client, delivery); err != nil {
		return arg, &ExtractorError{TypeName: typeName[P](), Err: err}
	}
	return arg, nil
}

// H0 adapts a zero argument function into a Handler.
func H0(fn func(ctx context.Context) error) Handler {
	return HandlerFunc(func(ctx context.Context, _ *Client, _ Delivery) error {
		return fn(ctx)
	})
}

// H1 adapts a one argument function into a Handler. Arguments are extracted
// left to right and the first failure aborts the invocation.
func H1[P1 any, PP1 ExtractorPtr[P1]](fn func(ctx context.Context, p1 P1) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1)
	})
}

// H2 adapts a two argument function into a Handler.
func H2[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
](fn func(ctx context.Context, p1 P1, p2 P2) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2)
	})
}

// H3 adapts a three argument function into a Handler.
func H3[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3)
	})
}

// H4 adapts a four argument function into a Handler.
func H4[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
	P4 any, PP4 ExtractorPtr[P4],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3, p4 P4) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		p4, err := extractArg[P4, PP4](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3, p4)
	})
}

// H5 adapts a five argument function into a Handler.
func H5[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
	P4 any, PP4 ExtractorPtr[P4],
	P5 any, PP5 ExtractorPtr[P5],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3, p4 P4, p5 P5) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		p4, err := extractArg[P4, PP4](client, delivery)
		if err != nil {
			return err
		}
		p5, err := extractArg[P5, PP5](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3, p4, p5)
	})
}

// H6 adapts a six argument function into a Handler.
func H6[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
	P4 any, PP4 ExtractorPtr[P4],
	P5 any, PP5 ExtractorPtr[P5],
	P6 any, PP6 ExtractorPtr[P6],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3, p4 P4, p5 P5, p6 P6) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		p4, err := extractArg[P4, PP4](client, delivery)
		if err != nil {
			return err
		}
		p5, err := extractArg[P5, PP5](client, delivery)
		if err != nil {
			return err
		}
		p6, err := extractArg[P6, PP6](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3, p4, p5, p6)
	})
}

// H7 adapts a seven argument function into a Handler.
func H7[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
	P4 any, PP4 ExtractorPtr[P4],
	P5 any, PP5 ExtractorPtr[P5],
	P6 any, PP6 ExtractorPtr[P6],
	P7 any, PP7 ExtractorPtr[P7],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3, p4 P4, p5 P5, p6 P6, p7 P7) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		p4, err := extractArg[P4, PP4](client, delivery)
		if err != nil {
			return err
		}
		p5, err := extractArg[P5, PP5](client, delivery)
		if err != nil {
			return err
		}
		p6, err := extractArg[P6, PP6](client, delivery)
		if err != nil {
			return err
		}
		p7, err := extractArg[P7, PP7](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3, p4, p5, p6, p7)
	})
}

// H8 adapts an eight argument function into a Handler.
func H8[
	P1 any, PP1 ExtractorPtr[P1],
	P2 any, PP2 ExtractorPtr[P2],
	P3 any, PP3 ExtractorPtr[P3],
	P4 any, PP4 ExtractorPtr[P4],
	P5 any, PP5 ExtractorPtr[P5],
	P6 any, PP6 ExtractorPtr[P6],
	P7 any, PP7 ExtractorPtr[P7],
	P8 any, PP8 ExtractorPtr[P8],
](fn func(ctx context.Context, p1 P1, p2 P2, p3 P3, p4 P4, p5 P5, p6 P6, p7 P7, p8 P8) error) Handler {
	return HandlerFunc(func(ctx context.Context, client *Client, delivery Delivery) error {
		p1, err := extractArg[P1, PP1](client, delivery)
		if err != nil {
			return err
		}
		p2, err := extractArg[P2, PP2](client, delivery)
		if err != nil {
			return err
		}
		p3, err := extractArg[P3, PP3](client, delivery)
		if err != nil {
			return err
		}
		p4, err := extractArg[P4, PP4](client, delivery)
		if err != nil {
			return err
		}
		p5, err := extractArg[P5, PP5](client, delivery)
		if err != nil {
			return err
		}
		p6, err := extractArg[P6, PP6](client, delivery)
		if err != nil {
			return err
		}
		p7, err := extractArg[P7, PP7](client, delivery)
		if err != nil {
			return err
		}
		p8, err := extractArg[P8, PP8](client, delivery)
		if err != nil {
			return err
		}
		return fn(ctx, p1, p2, p3, p4, p5, p6, p7, p8)
	})
}
