package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/armkit/arm"
	"github.com/kbukum/armkit/services/queuestorage"
)

func (a *app) queueClient() (*queuestorage.Client, error) {
	if a.cfg.Storage.QueueEndpoint == "" {
		return nil, fmt.Errorf("no queue endpoint: set --queue-endpoint, storage.queue_endpoint or ARMKIT_STORAGE_QUEUE_ENDPOINT")
	}
	cred, err := a.credential()
	if err != nil {
		return nil, err
	}
	return queuestorage.NewClientBuilder(cred).FromConfig(&a.cfg).Build()
}

func newQueuesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queues",
		Aliases: []string{"queue"},
		Short:   "Manage storage queues and messages",
	}
	cmd.AddCommand(
		newQueuesListCommand(a),
		newQueuesCreateCommand(a),
		newQueuesDeleteCommand(a),
		newQueuesPeekCommand(a),
		newQueuesEnqueueCommand(a),
		newQueuesDequeueCommand(a),
	)
	return cmd
}

func newQueuesListCommand(a *app) *cobra.Command {
	var (
		prefix     string
		marker     string
		maxResults int32
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queues with their metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			b := client.Service().ListQueues().Prefix(prefix).Marker(marker).Include(queuestorage.IncludeMetadata)
			if maxResults > 0 {
				b = b.MaxResults(maxResults)
			}
			queues, more, err := collect(cmd.Context(), b.Pager(), all,
				func(page queuestorage.ListQueuesSegmentResponse) []queuestorage.QueueItem { return page.Queues })
			if err != nil {
				return err
			}

			t := &table{header: []string{"Name", "Metadata"}}
			for _, q := range queues {
				t.add(q.Name, formatMetadata(q.Metadata))
			}
			if err := a.printer(cmd.OutOrStdout()).print(queues, t); err != nil {
				return err
			}
			return a.moreHint(cmd.ErrOrStderr(), more)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only queues whose name starts with prefix")
	cmd.Flags().StringVar(&marker, "marker", "", "start from a NextMarker saved from an earlier listing")
	cmd.Flags().Int32Var(&maxResults, "max-results", 0, "queues per page")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	return cmd
}

func newQueuesCreateCommand(a *app) *cobra.Command {
	var metadata map[string]string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			resp, err := client.Queue().Create(args[0]).Metadata(metadata).Send(cmd.Context())
			if err != nil {
				return err
			}
			verb := "Created"
			if resp.Status == arm.StatusNoContent {
				verb = "Already exists:"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, args[0])
			return err
		},
	}
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "metadata as key=value pairs")
	return cmd
}

func newQueuesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a queue and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			if _, err := client.Queue().Delete(args[0]).Send(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}
}

func newQueuesPeekCommand(a *app) *cobra.Command {
	var count int32
	cmd := &cobra.Command{
		Use:   "peek NAME",
		Short: "Show messages without hiding them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			resp, err := client.Messages().Peek(args[0]).NumOfMessages(count).Send(cmd.Context())
			if err != nil {
				return err
			}
			t := &table{header: []string{"ID", "Inserted", "Expires", "Dequeues", "Text"}}
			for _, m := range resp.Messages {
				t.add(m.MessageID, formatTime(m.InsertionTime.Time), formatTime(m.ExpirationTime.Time),
					strconv.FormatInt(m.DequeueCount, 10), m.MessageText)
			}
			return a.printer(cmd.OutOrStdout()).print(resp.Messages, t)
		},
	}
	cmd.Flags().Int32VarP(&count, "count", "n", 1, "messages to show, 1 to 32")
	return cmd
}

func newQueuesEnqueueCommand(a *app) *cobra.Command {
	var (
		ttl        int32
		visibility int32
	)
	cmd := &cobra.Command{
		Use:   "enqueue NAME TEXT",
		Short: "Add a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			b := client.Messages().Enqueue(args[0], args[1])
			if cmd.Flags().Changed("ttl") {
				b = b.MessageTTL(ttl)
			}
			if cmd.Flags().Changed("visibility-timeout") {
				b = b.VisibilityTimeout(visibility)
			}
			resp, err := b.Send(cmd.Context())
			if err != nil {
				return err
			}
			t := &table{header: []string{"ID", "Pop Receipt", "Visible At", "Expires"}}
			for _, m := range resp.Messages {
				t.add(m.MessageID, m.PopReceipt, formatTime(m.TimeNextVisible.Time), formatTime(m.ExpirationTime.Time))
			}
			return a.printer(cmd.OutOrStdout()).print(resp.Messages, t)
		},
	}
	cmd.Flags().Int32Var(&ttl, "ttl", 0, "time to live in seconds, -1 never expires")
	cmd.Flags().Int32Var(&visibility, "visibility-timeout", 0, "seconds before the message becomes visible")
	return cmd
}

func newQueuesDequeueCommand(a *app) *cobra.Command {
	var (
		count      int32
		visibility int32
		remove     bool
	)
	cmd := &cobra.Command{
		Use:   "dequeue NAME",
		Short: "Retrieve messages and hide them, or delete them with --delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.queueClient()
			if err != nil {
				return err
			}
			b := client.Messages().Dequeue(args[0]).NumOfMessages(count)
			if cmd.Flags().Changed("visibility-timeout") {
				b = b.VisibilityTimeout(visibility)
			}
			resp, err := b.Send(cmd.Context())
			if err != nil {
				return err
			}
			if remove {
				for _, m := range resp.Messages {
					if _, err := client.MessageID().Delete(args[0], m.MessageID, m.PopReceipt).Send(cmd.Context()); err != nil {
						return fmt.Errorf("delete message %s: %w", m.MessageID, err)
					}
				}
			}
			t := &table{header: []string{"ID", "Dequeues", "Visible At", "Pop Receipt", "Text"}}
			for _, m := range resp.Messages {
				t.add(m.MessageID, strconv.FormatInt(m.DequeueCount, 10), formatTime(m.TimeNextVisible.Time), m.PopReceipt, m.MessageText)
			}
			return a.printer(cmd.OutOrStdout()).print(resp.Messages, t)
		},
	}
	cmd.Flags().Int32VarP(&count, "count", "n", 1, "messages to retrieve, 1 to 32")
	cmd.Flags().Int32Var(&visibility, "visibility-timeout", 0, "seconds the messages stay hidden")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the messages after retrieving them")
	return cmd
}

func formatMetadata(md map[string]string) string {
	parts := make([]string, 0, len(md))
	for _, k := range slices.Sorted(maps.Keys(md)) {
		parts = append(parts, k+"="+md[k])
	}
	return strings.Join(parts, ",")
}
