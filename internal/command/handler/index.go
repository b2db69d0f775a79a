package command

import (
	"context"
	"fmt"
	"text/tabwriter"

	"academy/internal/core"
	"academy/internal/database/mongodb/index"
	"academy/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// IndexSyncer 由 *client.MongoClient 實作：連線時建立索引，之後關閉
type IndexSyncer interface {
	Connect(ctx context.Context) error
	LastReport() index.Report
	Close(ctx context.Context) error
}

// ReportForwarder 由 *client.EventForwarder 實作
type ReportForwarder interface {
	ForwardReport(report index.Report)
}

type IndexHandler struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	provisioner *index.Provisioner
	mongoClient IndexSyncer
	forwarder   ReportForwarder
}

func NewIndexHandler(
	logger *zap.Logger,
	trace *telemetry.Trace,
	provisioner *index.Provisioner,
	mongoClient IndexSyncer,
	forwarder ReportForwarder,
) *IndexHandler {
	return &IndexHandler{
		logger:      logger,
		trace:       trace,
		provisioner: provisioner,
		mongoClient: mongoClient,
		forwarder:   forwarder,
	}
}

// Plan 列出固定的索引清單，不連線
func (handler *IndexHandler) Plan(cmd *cobra.Command, args []string) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCOLLECTION\tINDEX\tUNIQUE")
	for i, spec := range handler.provisioner.Plan() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", i+1, spec.Collection, spec.Name(), spec.Unique)
	}
	_ = w.Flush()
}

// Sync 連線、建立索引、關閉連線。連線失敗與任一索引失敗都回傳錯誤，由 main 以 exit 1 結束
func (handler *IndexHandler) Sync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, _, end := handler.trace.WithSpan(ctx, core.SpanCommandIndexSync)
	if err := handler.mongoClient.Connect(ctx); err != nil {
		end(err)
		return err
	}
	defer func() {
		if err := handler.mongoClient.Close(context.Background()); err != nil {
			handler.logger.Error("failed to close MongoDB client", zap.Error(err))
		}
	}()

	report := handler.mongoClient.LastReport()
	handler.forwarder.ForwardReport(report)
	cmd.Printf("database %s: %d/%d indexes ensured\n", report.Database, report.Created(), report.Attempted())
	for _, result := range report.Results {
		if result.Err != nil {
			cmd.Printf("  FAILED %s.%s (%s): %v\n", result.Spec.Collection, result.Name, result.Reason, result.Err)
		}
	}
	end(report.Err())
	return report.Err()
}
