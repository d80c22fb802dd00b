package main

import (
	"github.com/spf13/cobra"

	"github.com/vikasavnish/movein/internal/api"
	"github.com/vikasavnish/movein/internal/config"
	"github.com/vikasavnish/movein/internal/geocode"
	"github.com/vikasavnish/movein/internal/rental"
	"github.com/vikasavnish/movein/internal/websocket"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print every registered HTTP route",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Registering routes does not touch the database or upstream APIs.
			router, err := api.SetupRouter(
				nil,
				websocket.NewHub(),
				cfg,
				geocode.NewClient(cfg.MapQuest.BaseURL, "", nil, nil),
				rental.NewClient(cfg.Rental.BaseURL, "", cfg.Rental.APIHost, nil, nil),
			)
			if err != nil {
				return err
			}
			return api.PrintRoutes(cmd.OutOrStdout(), router)
		},
	}
}
