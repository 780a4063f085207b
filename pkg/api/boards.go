package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/raildeck/raildeck/pkg/raildata"
)

// requestTimeout is the hard deadline for one aggregation request. Unlike
// the enhancement soft deadline, exceeding it surfaces a timeout error.
const requestTimeout = 15 * time.Second

func (s *Server) getStationBoard(c *fiber.Ctx) error {
	request := raildata.StationBoardRequest{
		CRS:             c.Params("crs"),
		NumRows:         c.QueryInt("numRows", 10),
		FilterCRS:       c.Query("filterCrs"),
		FilterDirection: raildata.FilterDirection(c.Query("filterType", string(raildata.FilterDirectionTo))),
		TimeOffset:      c.QueryInt("timeOffset", 0),
		TimeWindow:      c.QueryInt("timeWindow", 120),
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	board, err := s.Aggregator.GetStationBoard(ctx, request)
	if err != nil {
		return respondError(c, timeoutAware(err))
	}

	marshalled, err := sheriff.Marshal(&sheriff.Options{Groups: marshalGroups(c)}, board)
	if err != nil {
		return respondError(c, err)
	}

	return respondSuccess(c, marshalled)
}

func (s *Server) getServiceDetails(c *fiber.Ctx) error {
	serviceID := c.Params("id")
	if serviceID == "" {
		return respondError(c, raildata.NewError(raildata.CodeParseError, "a service identifier is required", nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	details, err := s.Aggregator.GetServiceDetails(ctx, serviceID)
	if err != nil {
		return respondError(c, timeoutAware(err))
	}

	marshalled, err := sheriff.Marshal(&sheriff.Options{Groups: marshalGroups(c)}, details)
	if err != nil {
		return respondError(c, err)
	}

	return respondSuccess(c, marshalled)
}

func marshalGroups(c *fiber.Ctx) []string {
	groups := []string{"basic"}
	if c.Query("detailed") == "yes" {
		groups = append(groups, "detailed")
	}

	return groups
}

func timeoutAware(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return raildata.NewError(raildata.CodeTimeout, "request deadline exceeded", err)
	}

	return err
}
