package main

import (
	"context"
	"strconv"

	"github.com/BearBump/ShipTrack/internal/api/shipments_rpc"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Errorf("invalid shipment id %q", s)
	}
	return id, nil
}

func newTrackCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "track <tracking-number>",
		Short: "Public lookup: shipment and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, false, func(ctx context.Context, client *shipments_rpc.Client) error {
				view, err := client.TrackShipment(ctx, &shipments_rpc.TrackShipmentRequest{TrackingNumber: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}

func newShipmentCmd(c *cli) *cobra.Command {
	shipmentCmd := &cobra.Command{
		Use:     "shipment",
		Aliases: []string{"shipments"},
		Short:   "Admin shipment operations",
	}

	var in shipments_rpc.CreateShipmentRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a shipment (tracking number is generated unless --tracking-number is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withClient(cmd, true, func(ctx context.Context, client *shipments_rpc.Client) error {
				reply, err := client.CreateShipment(ctx, &in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reply)
			})
		},
	}
	f := createCmd.Flags()
	f.StringVar(&in.TrackingNumber, "tracking-number", "", "explicit tracking number")
	f.StringVar(&in.SenderName, "sender", "", "sender name")
	f.StringVar(&in.SenderPhone, "sender-phone", "", "sender phone")
	f.StringVar(&in.ReceiverName, "receiver", "", "receiver name")
	f.StringVar(&in.ReceiverPhone, "receiver-phone", "", "receiver phone")
	f.StringVar(&in.Origin, "origin", "", "origin location")
	f.StringVar(&in.Destination, "destination", "", "destination location")

	getCmd := &cobra.Command{
		Use:   "get <id | tracking-number>",
		Short: "Fetch one shipment by numeric id or tracking number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &shipments_rpc.GetShipmentRequest{}
			if id, err := strconv.ParseUint(args[0], 10, 64); err == nil {
				req.ID = id
			} else {
				req.TrackingNumber = args[0]
			}
			return c.withClient(cmd, true, func(ctx context.Context, client *shipments_rpc.Client) error {
				reply, err := client.GetShipment(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reply)
			})
		},
	}

	var (
		sender, senderPhone, receiver, receiverPhone string
		origin, destination, currentStatus           string
	)
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch editable shipment fields; unset flags are left unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var fields models.ShipmentFieldsUpdate
			set := func(name string, v *string, dst **string) {
				if cmd.Flags().Changed(name) {
					val := *v
					*dst = &val
				}
			}
			set("sender", &sender, &fields.SenderName)
			set("sender-phone", &senderPhone, &fields.SenderPhone)
			set("receiver", &receiver, &fields.ReceiverName)
			set("receiver-phone", &receiverPhone, &fields.ReceiverPhone)
			set("origin", &origin, &fields.Origin)
			set("destination", &destination, &fields.Destination)
			set("status", &currentStatus, &fields.CurrentStatus)

			return c.withClient(cmd, true, func(ctx context.Context, client *shipments_rpc.Client) error {
				reply, err := client.UpdateShipment(ctx, &shipments_rpc.UpdateShipmentRequest{ID: id, Fields: fields})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reply)
			})
		},
	}
	uf := updateCmd.Flags()
	uf.StringVar(&sender, "sender", "", "sender name")
	uf.StringVar(&senderPhone, "sender-phone", "", "sender phone (empty clears)")
	uf.StringVar(&receiver, "receiver", "", "receiver name")
	uf.StringVar(&receiverPhone, "receiver-phone", "", "receiver phone (empty clears)")
	uf.StringVar(&origin, "origin", "", "origin location")
	uf.StringVar(&destination, "destination", "", "destination location")
	uf.StringVar(&currentStatus, "status", "", "override current status without adding an event")

	shipmentCmd.AddCommand(createCmd, getCmd, updateCmd)
	return shipmentCmd
}

func newEventCmd(c *cli) *cobra.Command {
	eventCmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events"},
		Short:   "Tracking timeline operations",
	}

	var in shipments_rpc.AppendEventRequest
	addCmd := &cobra.Command{
		Use:   "add <shipment-id>",
		Short: "Append a status event; the shipment's current status follows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in.ShipmentID = id
			return c.withClient(cmd, true, func(ctx context.Context, client *shipments_rpc.Client) error {
				reply, err := client.AppendEvent(ctx, &in)
				if err != nil {
					return err
				}
				if reply.Warning != "" {
					cmd.PrintErrln("warning:", reply.Warning)
				}
				return printJSON(cmd.OutOrStdout(), reply)
			})
		},
	}
	addCmd.Flags().StringVar(&in.Status, "status", "", "status label, e.g. \"In Transit\"")
	addCmd.Flags().StringVar(&in.Location, "location", "", "where the event happened")
	addCmd.Flags().StringVar(&in.Note, "note", "", "optional note")

	listCmd := &cobra.Command{
		Use:   "list <shipment-id>",
		Short: "List events oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withClient(cmd, true, func(ctx context.Context, client *shipments_rpc.Client) error {
				reply, err := client.ListEvents(ctx, &shipments_rpc.ListEventsRequest{ShipmentID: id})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reply)
			})
		},
	}

	eventCmd.AddCommand(addCmd, listCmd)
	return eventCmd
}
