package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simp-lee/parkdash/internal/api"
	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/table"
)

// errReported marks a failure already printed to the user.
var errReported = errors.New("reported")

// listFlags are the paging, search and sort flags every list command takes.
type listFlags struct {
	page   int
	limit  int
	search string
	sort   string
	desc   bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.page, "page", "p", 1, "page number, starting at 1")
	fs.IntVarP(&f.limit, "limit", "l", table.DefaultPageSize, fmt.Sprintf("rows per page, one of %v", table.PageSizes))
	fs.StringVarP(&f.search, "search", "s", "", "search text")
	fs.StringVar(&f.sort, "sort", "", "sort column, e.g. createdAt")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *listFlags) descriptor() (table.Descriptor, error) {
	if !table.ValidPageSize(f.limit) {
		return table.Descriptor{}, fmt.Errorf("invalid --limit %d: want one of %v", f.limit, table.PageSizes)
	}
	if f.page < 1 {
		return table.Descriptor{}, fmt.Errorf("invalid --page %d: pages start at 1", f.page)
	}
	d := table.NewDescriptor().WithPageSize(f.limit).WithSearch(f.search).WithPage(f.page - 1)
	if f.sort != "" {
		d.SortColumn = f.sort
		d.SortDir = domain.SortAsc
		if f.desc {
			d.SortDir = domain.SortDesc
		}
	}
	return d, nil
}

// printList fetches one page and prints it. Read failures are shown in
// place of the rows, the way the dashboard shows them.
func printList[T any](c *cli, cmd *cobra.Command, t *table.Table[T], fetch func(context.Context, domain.PageRequest) (domain.Envelope[T], error)) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	env, err := fetch(ctx, t.Descriptor.Request())
	if err != nil {
		if domain.IsUnauthorized(err) {
			t.ErrMessage = `The API rejected the stored token. Run "parkctl login" again.`
		}
		t.FromResult(domain.Fail[domain.Envelope[T]](err))
		table.Fprint(c.errOut, t.View(), c.colors())
		return errReported
	}
	if c.output == outputYAML {
		return writeYAML(c.out, env)
	}
	t.FromResult(domain.Ok(env))
	table.Fprint(c.out, t.View(), c.colors())
	return nil
}

func (c *cli) slotsCmd() *cobra.Command {
	var (
		lf     listFlags
		size   string
		status string
	)
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List parking slots",
		Long: `List parking slots. Admins see every slot; other accounts see the
slots that are available to book.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, creds, err := c.client()
			if err != nil {
				return err
			}
			d, err := lf.descriptor()
			if err != nil {
				return err
			}
			if !creds.isAdmin() {
				status = string(domain.SlotAvailable)
			}
			d = d.WithFilter(api.FilterSlotSize, strings.ToUpper(size)).
				WithFilter(api.FilterSlotStatus, strings.ToUpper(status)).
				WithPage(lf.page - 1)

			t := &table.Table[domain.Slot]{
				ID:         "slots",
				Descriptor: d,
				Columns: []table.Column[domain.Slot]{
					{Key: "parkingSlotNumber", Header: "NUMBER", Value: func(s domain.Slot) string { return s.ParkingSlotNumber }},
					{Key: "parkingSlotSize", Header: "SIZE", Value: func(s domain.Slot) string { return string(s.ParkingSlotSize) }},
					{Key: "parkingSlotStatus", Header: "STATUS", Value: func(s domain.Slot) string { return string(s.ParkingSlotStatus) }},
					{Key: "id", Header: "ID", Value: func(s domain.Slot) string { return s.ID }},
					{Key: "createdAt", Header: "CREATED", Value: func(s domain.Slot) string { return page.FormatDate(s.CreatedAt) }},
				},
			}
			return printList(c, cmd, t, client.Slots().List)
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&size, "slot-size", "", "filter by size (SMALL, MEDIUM, LARGE)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (AVAILABLE, OCCUPIED, MAINTENANCE); admins only")
	return cmd
}

func (c *cli) vehiclesCmd() *cobra.Command {
	var (
		lf   listFlags
		year int
	)
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicles",
		Long:  `List vehicles. Admins see every vehicle; other accounts see their own.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, creds, err := c.client()
			if err != nil {
				return err
			}
			d, err := lf.descriptor()
			if err != nil {
				return err
			}
			if year != 0 {
				d = d.WithFilter(api.FilterVehicleYear, strconv.Itoa(year)).WithPage(lf.page - 1)
			}

			fetch := client.Vehicles().ListMine
			if creds.isAdmin() {
				fetch = client.Vehicles().List
			}
			t := &table.Table[domain.Vehicle]{ID: "vehicles", Descriptor: d, Columns: vehicleColumns()}
			return printList(c, cmd, t, fetch)
		},
	}
	lf.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "filter by model year")
	cmd.AddCommand(c.vehicleLookupCmd())
	return cmd
}

func vehicleColumns() []table.Column[domain.Vehicle] {
	return []table.Column[domain.Vehicle]{
		{Key: "vehiclePlateNumber", Header: "PLATE", Value: func(v domain.Vehicle) string { return v.VehiclePlateNumber }},
		{Key: "vehicleType", Header: "TYPE", Value: func(v domain.Vehicle) string { return v.VehicleType }},
		{Key: "vehicleBrand", Header: "BRAND", Value: func(v domain.Vehicle) string { return v.VehicleBrand }},
		{Key: "vehicleModel", Header: "MODEL", Value: func(v domain.Vehicle) string { return v.VehicleModel }},
		{Key: "vehicleColor", Header: "COLOR", Value: func(v domain.Vehicle) string { return v.VehicleColor }},
		{Key: "vehicleYear", Header: "YEAR", Value: func(v domain.Vehicle) string { return strconv.Itoa(v.VehicleYear) }},
	}
}

func (c *cli) vehicleLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup PLATE",
		Short: "Find a vehicle by plate number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := c.client()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			v, err := client.Vehicles().GetByPlate(ctx, args[0])
			if domain.IsNotFound(err) {
				return fmt.Errorf("no vehicle with plate %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("lookup failed: %s", domain.UserMessage(err, "could not reach the API"))
			}
			if c.output == outputYAML {
				return writeYAML(c.out, v)
			}
			t := &table.Table[domain.Vehicle]{ID: "vehicle", Columns: vehicleColumns(), Descriptor: table.NewDescriptor()}
			t.FromResult(domain.Ok(domain.Envelope[domain.Vehicle]{Items: []domain.Vehicle{*v}, TotalCount: 1}))
			table.Fprint(c.out, t.View(), c.colors())
			return nil
		},
	}
}

func (c *cli) ordersCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List slot orders",
		Long:  `List slot orders. Admins see every order; other accounts see their own.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, creds, err := c.client()
			if err != nil {
				return err
			}
			d, err := lf.descriptor()
			if err != nil {
				return err
			}

			fetch := client.Orders().List
			if !creds.isAdmin() {
				fetch = func(ctx context.Context, req domain.PageRequest) (domain.Envelope[domain.SlotOrder], error) {
					return client.Orders().ListByUser(ctx, creds.User.ID, req)
				}
			}
			t := &table.Table[domain.SlotOrder]{
				ID:         "orders",
				Descriptor: d,
				Columns: []table.Column[domain.SlotOrder]{
					{Key: "id", Header: "ID", Value: func(o domain.SlotOrder) string { return o.ID }},
					{Key: "parkingSlotId", Header: "SLOT", Value: orderSlot},
					{Key: "vehiclePlateNumber", Header: "VEHICLE", Value: orderPlate},
					{Key: "hours", Header: "HOURS", Value: func(o domain.SlotOrder) string { return strconv.FormatFloat(o.Hours, 'f', -1, 64) }},
					{Key: "total", Header: "TOTAL", Value: func(o domain.SlotOrder) string { return page.Money(o.Total()) }},
					{Key: "parkingSlotOrderStatus", Header: "STATUS", Value: func(o domain.SlotOrder) string { return string(o.ParkingSlotOrderStatus) }},
					{Key: "createdAt", Header: "CREATED", Value: func(o domain.SlotOrder) string { return page.FormatDate(o.CreatedAt) }},
				},
			}
			return printList(c, cmd, t, fetch)
		},
	}
	lf.register(cmd)
	cmd.AddCommand(c.orderStatusCmd())
	return cmd
}

func orderSlot(o domain.SlotOrder) string {
	if o.ParkingSlot != nil && o.ParkingSlot.ParkingSlotNumber != "" {
		return o.ParkingSlot.ParkingSlotNumber
	}
	return o.ParkingSlotID
}

func orderPlate(o domain.SlotOrder) string {
	if o.ParkingSlotVehicle != nil {
		return o.ParkingSlotVehicle.VehiclePlateNumber
	}
	return "-"
}

func (c *cli) orderStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ORDER_ID STATUS",
		Short: "Change the status of an order",
		Long: `Change the status of an order to PENDING, APPROVED, REJECTED or COMPLETED.

Whether the transition is allowed is decided by the API; its answer is
printed as is.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.UpdateOrderStatusInput{Status: domain.OrderStatus(strings.ToUpper(args[1]))}
			if err := checkInput(in); err != nil {
				return err
			}
			client, _, err := c.client()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			o, err := client.Orders().UpdateStatus(ctx, args[0], in.Status)
			if err != nil {
				return fmt.Errorf("update failed: %s", domain.UserMessage(err, "could not reach the API"))
			}
			if c.output == outputYAML {
				return writeYAML(c.out, o)
			}
			c.success("Order %s is now %s", o.ID, o.ParkingSlotOrderStatus)
			return nil
		},
	}
}

func (c *cli) usersCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts (admins only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, creds, err := c.client()
			if err != nil {
				return err
			}
			if !creds.isAdmin() {
				return errors.New("listing users needs an ADMIN account")
			}
			d, err := lf.descriptor()
			if err != nil {
				return err
			}
			t := &table.Table[domain.User]{
				ID:         "users",
				Descriptor: d,
				Columns: []table.Column[domain.User]{
					{Key: "firstName", Header: "NAME", Value: domain.User.FullName},
					{Key: "email", Header: "EMAIL", Value: func(u domain.User) string { return u.Email }},
					{Key: "role", Header: "ROLE", Value: func(u domain.User) string { return string(u.Role) }},
					{Key: "id", Header: "ID", Value: func(u domain.User) string { return u.ID }},
					{Key: "createdAt", Header: "JOINED", Value: func(u domain.User) string { return page.FormatDate(u.CreatedAt) }},
				},
			}
			return printList(c, cmd, t, client.Users().List)
		},
	}
	lf.register(cmd)
	return cmd
}

// checkInput validates in and flattens field messages into one error.
func checkInput(in any) error {
	err := domain.Validate(in)
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(appErr.Fields))
	for field, msg := range appErr.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	slices.Sort(msgs)
	return errors.New(strings.Join(msgs, "; "))
}
